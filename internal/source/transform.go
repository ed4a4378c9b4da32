package source

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	shipDateLayout = "01/02/2006" // dates in the sheet header, e.g. 09/02/2025
	shipTextLayout = "02 Jan 2006"
)

// Matches derived names that end with an arrival date, e.g.
// Preorder-100-CA-Seat-0902-30.
var mmddTrailer = regexp.MustCompile(`^Preorder-(.*?)(-\d{4}-[^-]+)$`)

// normalizeVariantID validates a variant cell at ingestion: placeholders and
// non-numeric values are rejected, and the ".0" tail that spreadsheets append
// to numeric cells is stripped.
func normalizeVariantID(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" || strings.ToUpper(v) == "#N/A" {
		return ""
	}
	v = strings.TrimSuffix(v, ".0")
	for _, r := range v {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return v
}

func parseDiscount(raw string) *float64 {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	d, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &d
}

// formatDiscount renders a whole discount without a decimal point and
// anything else with one digit, matching the derived-name convention.
func formatDiscount(d float64) string {
	if d == float64(int(d)) {
		return strconv.Itoa(int(d))
	}
	return fmt.Sprintf("%.1f", d)
}

// deriveOffer turns a raw header pair into the canonical internal name and
// customer-facing shipping text:
//
//	"16 Weeks" + 40            -> Preorder-16wks-40, "112 days after checkout"
//	"100-CA-Seat" + 09/02/2025 -> Preorder-100-CA-Seat-0902-30, "02 Sep 2025"
//
// A pair with no discount is passed through untouched.
func deriveOffer(name, rawDate string, discount *float64) (string, string) {
	if discount == nil {
		return name, rawDate
	}
	disc := formatDiscount(*discount)

	if strings.Contains(name, "Weeks") {
		weeks, err := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(name, "Weeks", "")))
		if err != nil {
			return name, "0 days after checkout"
		}
		return fmt.Sprintf("Preorder-%dwks-%s", weeks, disc), fmt.Sprintf("%d days after checkout", weeks*7)
	}

	internalName := fmt.Sprintf("Preorder-%s-%s-%s", strings.ReplaceAll(name, "#", ""), formatMMDD(rawDate), disc)
	shipping := rawDate
	if dt, err := time.Parse(shipDateLayout, strings.TrimSpace(rawDate)); err == nil {
		shipping = dt.Format(shipTextLayout)
	}
	return internalName, shipping
}

func formatMMDD(rawDate string) string {
	dt, err := time.Parse(shipDateLayout, strings.TrimSpace(rawDate))
	if err != nil {
		return "0000"
	}
	return dt.Format("0102")
}

// ParseInternalName splits a derived internal name back into its container
// name and arrival MMDD, the stable identity used to diff runs:
//
//	Preorder-100-CA-Seat-0902-30 -> ("100-CA-Seat", "0902")
//	Preorder-16wks-40            -> ("16wks-40", "16wks")
func ParseInternalName(s string) (containerName, arrivalMMDD string) {
	s = strings.TrimSpace(s)

	if m := mmddTrailer.FindStringSubmatch(s); m != nil {
		name := strings.Trim(m[1], "-")
		trailer := strings.Split(m[2], "-") // ["", "0902", "30"]
		return name, trailer[1]
	}

	rest := s
	if cut, ok := strings.CutPrefix(s, "Preorder-"); ok {
		rest = cut
	}
	parts := strings.Split(rest, "-")
	date := ""
	if len(parts) >= 2 {
		date = parts[len(parts)-2]
	}
	if rest != s {
		return rest, date
	}
	return s, date
}

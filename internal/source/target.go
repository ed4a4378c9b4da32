package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Target CSV pair written per suffix; the load-batch step reads these back,
// which keeps the two steps independently restartable.
func offersFileName(suffix string) string {
	return fmt.Sprintf("preorder_offers_%s.csv", suffix)
}

func variantsFileName(suffix string) string {
	return fmt.Sprintf("preorder_variants_%s.csv", suffix)
}

// WriteTarget writes a parsed sheet into the target directory as an offers
// CSV and a variants CSV.
func WriteTarget(dir string, sheet Sheet) error {
	offerRows := [][]string{{"id", "internal_name", "shipping_text", "discount_amount"}}
	for _, o := range sheet.Offers {
		offerRows = append(offerRows, []string{
			strconv.Itoa(o.ID), o.InternalName, o.ShippingText, formatOptionalDiscount(o.Discount),
		})
	}
	if err := writeCSV(filepath.Join(dir, offersFileName(sheet.Suffix)), offerRows); err != nil {
		return fmt.Errorf("failed to write offers csv for %s: %w", sheet.Suffix, err)
	}

	variantRows := [][]string{{"offer_id", "variant_id", "discount_amount"}}
	for _, v := range sheet.Rows {
		variantRows = append(variantRows, []string{
			strconv.Itoa(v.OfferID), v.VariantID, formatOptionalDiscount(v.Discount),
		})
	}
	if err := writeCSV(filepath.Join(dir, variantsFileName(sheet.Suffix)), variantRows); err != nil {
		return fmt.Errorf("failed to write variants csv for %s: %w", sheet.Suffix, err)
	}
	return nil
}

// ReadTarget loads the offer/variant CSV pair for one suffix back into
// memory for the load-batch step.
func ReadTarget(dir, suffix string) ([]SheetOffer, []SheetVariant, error) {
	offerRecords, err := readCSV(filepath.Join(dir, offersFileName(suffix)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read offers csv for %s: %w", suffix, err)
	}
	var offers []SheetOffer
	for _, rec := range offerRecords {
		if len(rec) < 4 {
			continue
		}
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			continue
		}
		offers = append(offers, SheetOffer{
			ID:           id,
			InternalName: rec[1],
			ShippingText: rec[2],
			Discount:     parseDiscount(rec[3]),
		})
	}

	variantRecords, err := readCSV(filepath.Join(dir, variantsFileName(suffix)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read variants csv for %s: %w", suffix, err)
	}
	var variants []SheetVariant
	for _, rec := range variantRecords {
		if len(rec) < 2 {
			continue
		}
		offerID, err := strconv.Atoi(rec[0])
		if err != nil {
			continue
		}
		v := SheetVariant{OfferID: offerID, VariantID: normalizeVariantID(rec[1])}
		if len(rec) > 2 {
			v.Discount = parseDiscount(rec[2])
		}
		if v.VariantID != "" {
			variants = append(variants, v)
		}
	}

	return offers, variants, nil
}

func formatOptionalDiscount(d *float64) string {
	if d == nil {
		return ""
	}
	return strconv.FormatFloat(*d, 'g', -1, 64)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		records = records[1:] // header
	}
	return records, nil
}

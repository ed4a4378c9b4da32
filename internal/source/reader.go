package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"preorder/internal/config"
	"preorder/internal/logger"
)

// Sheet is one parsed source spreadsheet. The sheet layout puts a pair of
// columns per offer starting at column B: the header row holds
// (offer name, ship date) and every data row holds (variant id, discount).
// One display row sits between header and data and is skipped; any further
// decoration rows are rejected cell by cell during validation.
type Sheet struct {
	Name    string
	Suffix  string
	Offers  []SheetOffer
	Rows    []SheetVariant
	Skipped int
}

// SheetOffer is an offer column pair from the header row. IDs are ordinal
// (column position + 1) and only meaningful within the sheet.
type SheetOffer struct {
	ID           int
	InternalName string
	ShippingText string
	Discount     *float64
}

// SheetVariant is one valid (variant id, discount) cell pair.
type SheetVariant struct {
	OfferID   int
	VariantID string
	Discount  *float64
}

const headerSkipRows = 1

type Reader struct {
	dir       string
	fileNames []string
	suffixes  []string
	logger    *logger.Logger
}

func NewReader(cfg *config.Config, logger *logger.Logger) *Reader {
	return &Reader{
		dir:       cfg.SourceCSVDir,
		fileNames: cfg.SourceFileNames,
		suffixes:  cfg.Suffixes,
		logger:    logger,
	}
}

// ReadAll parses every configured source file. A missing or unreadable file
// is logged and skipped; the run continues with the remaining sheets.
func (r *Reader) ReadAll() []Sheet {
	sheets := make([]Sheet, 0, len(r.fileNames))
	for i, name := range r.fileNames {
		sheet, err := r.readSheet(name, r.suffixes[i])
		if err != nil {
			r.logger.Error("Skipping source file %s: %v", name, err)
			continue
		}
		r.logger.Info("Parsed %s: %d offers, %d variant rows (%d cells skipped)",
			name, len(sheet.Offers), len(sheet.Rows), sheet.Skipped)
		sheets = append(sheets, *sheet)
	}
	return sheets
}

func (r *Reader) readSheet(name, suffix string) (*Sheet, error) {
	path := filepath.Join(r.dir, name+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse source file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("source file is empty")
	}

	sheet := &Sheet{Name: name, Suffix: suffix}
	sheet.Offers = parseHeader(records[0])

	dataStart := 1 + headerSkipRows
	if dataStart > len(records) {
		dataStart = len(records)
	}
	validOffers := make(map[int]bool)
	for _, record := range records[dataStart:] {
		rows, skipped := parseRow(record, len(sheet.Offers))
		sheet.Skipped += skipped
		for _, row := range rows {
			validOffers[row.OfferID] = true
			sheet.Rows = append(sheet.Rows, row)
		}
	}

	// First discount seen per offer becomes the offer's pricing amount,
	// and offers with no valid variant cells are dropped entirely.
	firstDiscount := make(map[int]*float64)
	for _, row := range sheet.Rows {
		if _, seen := firstDiscount[row.OfferID]; !seen {
			firstDiscount[row.OfferID] = row.Discount
		}
	}
	kept := sheet.Offers[:0]
	for _, offer := range sheet.Offers {
		if !validOffers[offer.ID] {
			continue
		}
		offer.Discount = firstDiscount[offer.ID]
		offer.InternalName, offer.ShippingText = deriveOffer(offer.InternalName, offer.ShippingText, offer.Discount)
		kept = append(kept, offer)
	}
	sheet.Offers = kept

	return sheet, nil
}

// parseHeader pulls (name, ship date) pairs from column B onward.
func parseHeader(header []string) []SheetOffer {
	var offers []SheetOffer
	for i := 1; i+1 < len(header); i += 2 {
		offers = append(offers, SheetOffer{
			ID:           len(offers) + 1,
			InternalName: strings.TrimSpace(header[i]),
			ShippingText: strings.TrimSpace(header[i+1]),
		})
	}
	return offers
}

// parseRow pulls (variant id, discount) pairs from column B onward. Cells
// that are empty, #N/A, or otherwise malformed are counted and skipped; a
// bad cell never aborts the sheet.
func parseRow(record []string, offerCount int) ([]SheetVariant, int) {
	var rows []SheetVariant
	skipped := 0
	for col := 1; col+1 < len(record); col += 2 {
		offerID := (col-1)/2 + 1
		if offerID > offerCount {
			break
		}
		variantID := normalizeVariantID(record[col])
		if variantID == "" {
			if strings.TrimSpace(record[col]) != "" {
				skipped++
			}
			continue
		}
		rows = append(rows, SheetVariant{
			OfferID:   offerID,
			VariantID: variantID,
			Discount:  parseDiscount(record[col+1]),
		})
	}
	return rows, skipped
}

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"preorder/internal/models"
	"preorder/internal/source"
	"preorder/internal/store"
)

// buildCSV parses every configured source sheet and writes the per-suffix
// offer/variant CSV pairs into the target directory.
func (p *Pipeline) buildCSV(_ context.Context) error {
	if err := os.MkdirAll(p.cfg.TargetCSVDir, 0o755); err != nil {
		return fmt.Errorf("failed to create target directory: %w", err)
	}

	sheets := p.reader.ReadAll()
	if len(sheets) == 0 {
		return fmt.Errorf("no source sheets could be read")
	}
	for _, sheet := range sheets {
		if err := source.WriteTarget(p.cfg.TargetCSVDir, sheet); err != nil {
			return err
		}
		p.logger.Info("Wrote target CSVs for %s: %d offers, %d variant rows",
			sheet.Suffix, len(sheet.Offers), len(sheet.Rows))
	}
	return nil
}

// loadBatch reads the target CSVs back, resets live statuses, and rebuilds
// both batch tables. Offers are deduped across files by internal name, which
// makes re-running this step on the same source a no-op in effect.
func (p *Pipeline) loadBatch(_ context.Context) error {
	if err := p.store.ClearOfferStatuses(); err != nil {
		return err
	}
	if err := p.store.TruncateBatch(); err != nil {
		return err
	}

	offersByName := make(map[string]*models.Offer)
	variantsByOffer := make(map[string]map[string]bool)
	var order []string

	for _, suffix := range p.cfg.Suffixes {
		sheetOffers, sheetVariants, err := source.ReadTarget(p.cfg.TargetCSVDir, suffix)
		if err != nil {
			p.logger.Error("Skipping target CSVs for %s: %v", suffix, err)
			continue
		}

		nameByOrdinal := make(map[int]string, len(sheetOffers))
		for _, so := range sheetOffers {
			if so.Discount == nil {
				p.logger.Warn("Skipping offer %q in %s: no discount", so.InternalName, suffix)
				continue
			}
			nameByOrdinal[so.ID] = so.InternalName

			if _, ok := offersByName[so.InternalName]; ok {
				continue
			}
			containerName, arrivalMMDD := source.ParseInternalName(so.InternalName)
			offersByName[so.InternalName] = &models.Offer{
				ID:                   uuid.New().String(),
				InternalName:         so.InternalName,
				ShippingText:         so.ShippingText,
				DiscountAmount:       int(*so.Discount),
				ContainerName:        containerName,
				ContainerArrivalMMDD: arrivalMMDD,
			}
			order = append(order, so.InternalName)
		}

		for _, sv := range sheetVariants {
			name, ok := nameByOrdinal[sv.OfferID]
			if !ok {
				continue
			}
			offerID := offersByName[name].ID
			if variantsByOffer[offerID] == nil {
				variantsByOffer[offerID] = make(map[string]bool)
			}
			variantsByOffer[offerID][sv.VariantID] = true
		}
	}

	offers := make([]models.Offer, 0, len(order))
	for _, name := range order {
		offers = append(offers, *offersByName[name])
	}
	if err := p.store.UpsertBatchOffers(offers); err != nil {
		return err
	}

	totalVariants := 0
	for _, offer := range offers {
		variants := make([]models.Variant, 0, len(variantsByOffer[offer.ID]))
		for variantID := range variantsByOffer[offer.ID] {
			variants = append(variants, models.Variant{OfferID: offer.ID, VariantID: variantID})
		}
		if err := p.store.ReplaceBatchVariants(offer.ID, variants); err != nil {
			return err
		}
		totalVariants += len(variants)
	}

	p.logger.Info("Loaded batch: %d offers, %d variants", len(offers), totalVariants)
	return nil
}

// confirmVariants checks every batch variant id against Shopify, writes a
// report, and drops ids Shopify no longer knows about from the batch table.
func (p *Pipeline) confirmVariants(ctx context.Context) error {
	ids, err := p.store.AllBatchVariantIDs()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		p.logger.Info("No batch variants to confirm")
		return nil
	}

	found, missing, err := p.shopify.CheckVariants(ctx, ids)
	if err != nil {
		return err
	}

	rows := [][]string{{"variant_id", "status"}}
	for _, id := range found {
		rows = append(rows, []string{id, "FOUND"})
	}
	for _, id := range missing {
		rows = append(rows, []string{id, "NOT_FOUND"})
	}
	reportPath := filepath.Join(p.cfg.TargetCSVDir, "shopify_variant_check_report.csv")
	if err := writeReport(reportPath, rows); err != nil {
		return fmt.Errorf("failed to write variant check report: %w", err)
	}

	p.logger.Info("Variant check: %d found, %d missing (report at %s)", len(found), len(missing), reportPath)
	if len(missing) > 0 {
		deleted, err := p.store.DeleteBatchVariantsByVariantIDs(missing)
		if err != nil {
			return err
		}
		p.logger.Info("Removed %d batch variant rows for missing ids", deleted)
	}
	return nil
}

// markStatus diffs the batch against the live offers and writes the
// resulting statuses back onto the live table.
func (p *Pipeline) markStatus(_ context.Context) error {
	live, err := p.store.LiveOffers()
	if err != nil {
		return err
	}
	batch, err := p.store.BatchOffers()
	if err != nil {
		return err
	}

	diff := store.ComputeDiff(live, batch)
	p.logger.Info("Status diff: %d insert, %d update, %d delete",
		len(diff.ToInsert), len(diff.ToUpdate), len(diff.ToDelete))
	return p.store.ApplyDiff(diff)
}

package pipeline

import (
	"context"
	"fmt"
	"strconv"

	"preorder/internal/models"
)

// attachVariants adds each inserted offer's variants to its new plan and
// marks the offer insert-completed. Ids the API rejects even after bisection
// are reported but do not fail the offer.
func (p *Pipeline) attachVariants(ctx context.Context) error {
	offers, err := p.store.OffersByStatus(models.StatusInsert)
	if err != nil {
		return err
	}

	failures := 0
	for _, o := range offers {
		if o.StoqOfferID == nil {
			p.logger.Warn("Offer %s has no plan id, cannot attach variants", o.InternalName)
			failures++
			continue
		}
		idStrs, err := p.store.LiveVariantIDsForOffer(o.ID)
		if err != nil {
			return err
		}

		res, err := p.stoq.AddVariants(ctx, *o.StoqOfferID, p.toInt64IDs(idStrs))
		if err != nil {
			p.logger.Error("Failed to attach variants for %s: %v", o.InternalName, err)
			p.publish(ctx, "attach-variants", "record-failed", fmt.Sprintf("%s: %v", o.InternalName, err))
			failures++
			continue
		}
		if len(res.Skipped) > 0 {
			p.logger.Warn("Plan %d: %d of %d variants skipped: %v", *o.StoqOfferID, len(res.Skipped), res.Requested, res.Skipped)
		}
		p.logger.Info("Attached %d variants to plan %d (%s)", res.Added, *o.StoqOfferID, o.InternalName)

		if err := p.store.SetOfferStatus(o.ID, models.StatusInsertCompleted); err != nil {
			return err
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d offers failed to attach variants", failures, len(offers))
	}
	return nil
}

// replaceVariants rebuilds the live variant table from the batch, matching
// offers by internal name. Offers with no live counterpart (deleted this
// run) are skipped.
func (p *Pipeline) replaceVariants(_ context.Context) error {
	batchOffers, err := p.store.BatchOffers()
	if err != nil {
		return err
	}

	replaced := 0
	for _, batchOffer := range batchOffers {
		live, err := p.store.LiveOfferByName(batchOffer.InternalName)
		if err != nil {
			p.logger.Debug("No live offer for %s, skipping variant replace", batchOffer.InternalName)
			continue
		}
		batchVariants, err := p.store.BatchVariantsForOffer(batchOffer.ID)
		if err != nil {
			return err
		}

		variants := make([]models.Variant, 0, len(batchVariants))
		for _, v := range batchVariants {
			variants = append(variants, models.Variant{OfferID: live.ID, VariantID: v.VariantID})
		}
		if err := p.store.ReplaceLiveVariants(live.ID, variants); err != nil {
			return err
		}
		replaced += len(variants)
	}

	p.logger.Info("Replaced live variants for %d batch offers (%d rows)", len(batchOffers), replaced)
	return nil
}

// reconcileVariants aligns each updated plan's variant list on Stoq with the
// live variant table: API-only ids are removed and store-only ids are added.
func (p *Pipeline) reconcileVariants(ctx context.Context) error {
	offers, err := p.store.OffersByStatus(models.StatusUpdate)
	if err != nil {
		return err
	}

	failures := 0
	for _, o := range offers {
		if o.StoqOfferID == nil {
			p.logger.Warn("Offer %s has no plan id, cannot reconcile variants", o.InternalName)
			failures++
			continue
		}
		planID := *o.StoqOfferID

		apiIDs, err := p.stoq.PlanVariantIDs(ctx, planID)
		if err != nil {
			p.logger.Error("Failed to list plan %d variants: %v", planID, err)
			failures++
			continue
		}
		idStrs, err := p.store.LiveVariantIDsForOffer(o.ID)
		if err != nil {
			return err
		}
		dbIDs := p.toInt64IDs(idStrs)

		toRemove := diffInt64(apiIDs, dbIDs)
		toAdd := diffInt64(dbIDs, apiIDs)
		if len(toRemove) == 0 && len(toAdd) == 0 {
			continue
		}
		p.logger.Info("Reconciling plan %d (%s): %d to remove, %d to add", planID, o.InternalName, len(toRemove), len(toAdd))

		if len(toRemove) > 0 {
			res, err := p.stoq.RemoveVariants(ctx, planID, toRemove)
			if err != nil {
				p.logger.Error("Failed to remove variants from plan %d: %v", planID, err)
				failures++
				continue
			}
			if len(res.Failed) > 0 {
				p.logger.Warn("Plan %d: %d variant removals failed: %v", planID, len(res.Failed), res.Failed)
				failures++
			}
		}
		if len(toAdd) > 0 {
			res, err := p.stoq.AddVariants(ctx, planID, toAdd)
			if err != nil {
				p.logger.Error("Failed to add variants to plan %d: %v", planID, err)
				failures++
				continue
			}
			if len(res.Skipped) > 0 {
				p.logger.Warn("Plan %d: %d variant additions skipped: %v", planID, len(res.Skipped), res.Skipped)
			}
		}
	}

	if failures > 0 {
		return fmt.Errorf("variant reconciliation hit %d failures across %d offers", failures, len(offers))
	}
	return nil
}

// toInt64IDs converts stored variant ids to the numeric form the Stoq API
// expects, logging and dropping anything non-numeric.
func (p *Pipeline) toInt64IDs(ids []string) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			p.logger.Warn("Dropping non-numeric variant id %q", id)
			continue
		}
		out = append(out, n)
	}
	return out
}

// diffInt64 returns the members of a that are not in b.
func diffInt64(a, b []int64) []int64 {
	inB := make(map[int64]bool, len(b))
	for _, n := range b {
		inB[n] = true
	}
	var out []int64
	for _, n := range a {
		if !inB[n] {
			out = append(out, n)
		}
	}
	return out
}

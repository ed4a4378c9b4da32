package pipeline

import (
	"context"
	"fmt"

	"preorder/internal/models"
	"preorder/internal/services/stoq"
)

// createPlans registers a Stoq selling plan for every inserted offer and
// records the returned plan id. Per-record failures are logged and the step
// keeps going so one bad offer never blocks the rest.
func (p *Pipeline) createPlans(ctx context.Context) error {
	offers, err := p.store.OffersByStatus(models.StatusInsert)
	if err != nil {
		return err
	}

	failures := 0
	for _, o := range offers {
		if o.StoqOfferID != nil {
			p.logger.Info("Offer %s already has plan %d, skipping create", o.InternalName, *o.StoqOfferID)
			continue
		}

		planID, err := p.stoq.CreatePlan(ctx, stoq.NewPlanInput(o.InternalName, o.ShippingText, o.DiscountAmount))
		if err != nil {
			p.logger.Error("Failed to create plan for %s: %v", o.InternalName, err)
			p.publish(ctx, "create-plans", "record-failed", fmt.Sprintf("%s: %v", o.InternalName, err))
			failures++
			continue
		}
		p.logger.Info("Created plan %d for %s", planID, o.InternalName)
		if err := p.store.SetStoqOfferID(o.ID, planID); err != nil {
			return err
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d plan creations failed", failures, len(offers))
	}
	return nil
}

// updatePlans refreshes the shipping text and discount on updated offers,
// both in the live table and on the Stoq plan, using the batch snapshot as
// the source of truth.
func (p *Pipeline) updatePlans(ctx context.Context) error {
	offers, err := p.store.OffersByStatus(models.StatusUpdate)
	if err != nil {
		return err
	}

	failures := 0
	for _, o := range offers {
		batchOffer, err := p.store.BatchOfferByName(o.InternalName)
		if err != nil {
			p.logger.Error("No batch snapshot for %s: %v", o.InternalName, err)
			failures++
			continue
		}
		if err := p.store.UpdateOfferTerms(o.InternalName, batchOffer.ShippingText, batchOffer.DiscountAmount); err != nil {
			return err
		}

		if o.StoqOfferID == nil {
			p.logger.Warn("Offer %s has no plan id, skipping plan update", o.InternalName)
			continue
		}
		input := stoq.UpdatePlanInput(o.InternalName, batchOffer.ShippingText, batchOffer.DiscountAmount)
		if err := p.stoq.UpdatePlan(ctx, *o.StoqOfferID, input); err != nil {
			p.logger.Error("Failed to update plan %d for %s: %v", *o.StoqOfferID, o.InternalName, err)
			p.publish(ctx, "update-plans", "record-failed", fmt.Sprintf("%s: %v", o.InternalName, err))
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d plan updates failed", failures, len(offers))
	}
	return nil
}

// disablePlans turns off the plans of offers marked for deletion before they
// are removed, so storefront preorder buttons disappear immediately.
func (p *Pipeline) disablePlans(ctx context.Context) error {
	offers, err := p.store.OffersByStatus(models.StatusDelete)
	if err != nil {
		return err
	}

	failures := 0
	for _, o := range offers {
		if o.StoqOfferID == nil {
			continue
		}
		if err := p.stoq.DisablePlan(ctx, *o.StoqOfferID); err != nil {
			p.logger.Error("Failed to disable plan %d for %s: %v", *o.StoqOfferID, o.InternalName, err)
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d plan disables failed", failures, len(offers))
	}
	return nil
}

// deletePlans removes deleted offers' plans from Stoq, then purges the
// completed rows from the live table. Offers without a plan id go straight
// to completed.
func (p *Pipeline) deletePlans(ctx context.Context) error {
	offers, err := p.store.OffersByStatus(models.StatusDelete)
	if err != nil {
		return err
	}

	failures := 0
	for _, o := range offers {
		if o.StoqOfferID != nil {
			if err := p.stoq.DeletePlan(ctx, *o.StoqOfferID); err != nil {
				p.logger.Error("Failed to delete plan %d for %s: %v", *o.StoqOfferID, o.InternalName, err)
				p.publish(ctx, "delete-plans", "record-failed", fmt.Sprintf("%s: %v", o.InternalName, err))
				failures++
				continue
			}
		}
		if err := p.store.SetOfferStatus(o.ID, models.StatusDeleteCompleted); err != nil {
			return err
		}
	}

	purged, err := p.store.DeleteOffersByStatus(models.StatusDeleteCompleted)
	if err != nil {
		return err
	}
	p.logger.Info("Purged %d deleted offers", purged)

	if failures > 0 {
		return fmt.Errorf("%d of %d plan deletions failed", failures, len(offers))
	}
	return nil
}

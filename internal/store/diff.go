package store

import (
	"fmt"

	"preorder/internal/models"
)

// OfferUpdate carries the batch values to apply onto an existing live offer.
type OfferUpdate struct {
	ID                   string
	InternalName         string
	ContainerArrivalMMDD string
}

// Diff is the outcome of comparing the daily batch against the live offers
// on the (container_name, discount_amount) key.
type Diff struct {
	ToInsert []models.Offer // batch rows with no live counterpart
	ToUpdate []OfferUpdate  // live rows whose name or arrival date moved
	ToDelete []models.Offer // live rows missing from the batch
}

// ComputeDiff compares live offers against the current batch. Offers keep
// their identity across runs through the container/discount key; the
// internal name and arrival date are the mutable parts.
func ComputeDiff(live, batch []models.Offer) Diff {
	liveByKey := make(map[string]models.Offer, len(live))
	for _, o := range live {
		liveByKey[o.DiffKey()] = o
	}
	batchByKey := make(map[string]models.Offer, len(batch))
	for _, o := range batch {
		batchByKey[o.DiffKey()] = o
	}

	var diff Diff
	for _, o := range batch {
		existing, ok := liveByKey[o.DiffKey()]
		if !ok {
			diff.ToInsert = append(diff.ToInsert, o)
			continue
		}
		if existing.InternalName != o.InternalName || existing.ContainerArrivalMMDD != o.ContainerArrivalMMDD {
			diff.ToUpdate = append(diff.ToUpdate, OfferUpdate{
				ID:                   existing.ID,
				InternalName:         o.InternalName,
				ContainerArrivalMMDD: o.ContainerArrivalMMDD,
			})
		}
	}
	for _, o := range live {
		if _, ok := batchByKey[o.DiffKey()]; !ok {
			diff.ToDelete = append(diff.ToDelete, o)
		}
	}
	return diff
}

// ApplyDiff writes the diff back as statuses on the live offer table:
// changed rows get status=update, batch-only rows are inserted with
// status=insert (together with their variants, remapped to the new live
// ids), live-only rows get status=delete, and whatever is left untouched is
// marked update so every live row carries a status after the run.
func (s *Store) ApplyDiff(diff Diff) error {
	for _, u := range diff.ToUpdate {
		err := s.offers().Where("id = ?", u.ID).Updates(map[string]interface{}{
			"internal_name":          u.InternalName,
			"container_arrival_mmdd": u.ContainerArrivalMMDD,
			"status":                 models.StatusUpdate,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to apply update for offer %s: %w", u.ID, err)
		}
	}

	for _, batchOffer := range diff.ToInsert {
		status := models.StatusInsert
		live := models.Offer{
			InternalName:         batchOffer.InternalName,
			ShippingText:         batchOffer.ShippingText,
			DiscountAmount:       batchOffer.DiscountAmount,
			ContainerName:        batchOffer.ContainerName,
			ContainerArrivalMMDD: batchOffer.ContainerArrivalMMDD,
			Status:               &status,
		}
		if err := s.InsertOffers([]models.Offer{live}); err != nil {
			return err
		}

		inserted, err := s.LiveOfferByName(batchOffer.InternalName)
		if err != nil {
			return err
		}
		batchVariants, err := s.BatchVariantsForOffer(batchOffer.ID)
		if err != nil {
			return err
		}
		remapped := make([]models.Variant, 0, len(batchVariants))
		for _, v := range batchVariants {
			remapped = append(remapped, models.Variant{
				OfferID:   inserted.ID,
				VariantID: v.VariantID,
			})
		}
		if err := s.InsertLiveVariants(remapped); err != nil {
			return err
		}
	}

	for _, o := range diff.ToDelete {
		if err := s.SetOfferStatus(o.ID, models.StatusDelete); err != nil {
			return err
		}
	}

	err := s.offers().Where("status IS NULL").Update("status", models.StatusUpdate).Error
	if err != nil {
		return fmt.Errorf("failed to mark unchanged offers: %w", err)
	}
	return nil
}

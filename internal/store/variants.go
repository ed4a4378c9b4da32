package store

import (
	"fmt"

	"preorder/internal/models"
)

const deleteBatchSize = 500

// ReplaceBatchVariants swaps out one offer's rows in the batch variant table.
func (s *Store) ReplaceBatchVariants(offerID string, variants []models.Variant) error {
	err := s.batchVariants().Where("offer_id = ?", offerID).Delete(&models.Variant{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear batch variants for offer %s: %w", offerID, err)
	}
	for _, batch := range chunked(variants, insertBatchSize) {
		if err := s.batchVariants().Create(&batch).Error; err != nil {
			return fmt.Errorf("failed to insert batch variants for offer %s: %w", offerID, err)
		}
	}
	return nil
}

// ReplaceLiveVariants swaps out one offer's rows in the live variant table.
func (s *Store) ReplaceLiveVariants(offerID string, variants []models.Variant) error {
	err := s.variants().Where("offer_id = ?", offerID).Delete(&models.Variant{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear variants for offer %s: %w", offerID, err)
	}
	for _, batch := range chunked(variants, insertBatchSize) {
		if err := s.variants().Create(&batch).Error; err != nil {
			return fmt.Errorf("failed to insert variants for offer %s: %w", offerID, err)
		}
	}
	return nil
}

// InsertLiveVariants appends rows to the live variant table in batches.
func (s *Store) InsertLiveVariants(variants []models.Variant) error {
	for _, batch := range chunked(variants, insertBatchSize) {
		if err := s.variants().Create(&batch).Error; err != nil {
			return fmt.Errorf("failed to insert variants: %w", err)
		}
	}
	return nil
}

// LiveVariantIDsForOffer returns the Shopify variant ids linked to one offer.
func (s *Store) LiveVariantIDsForOffer(offerID string) ([]string, error) {
	var ids []string
	err := s.variants().Where("offer_id = ?", offerID).Order("variant_id").Pluck("variant_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load variant ids for offer %s: %w", offerID, err)
	}
	return ids, nil
}

// BatchVariantsForOffer returns the batch rows linked to one batch offer.
func (s *Store) BatchVariantsForOffer(offerID string) ([]models.Variant, error) {
	var variants []models.Variant
	err := s.batchVariants().Where("offer_id = ?", offerID).Find(&variants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load batch variants for offer %s: %w", offerID, err)
	}
	return variants, nil
}

// AllBatchVariantIDs pages distinct variant ids out of the batch table for
// the Shopify existence check.
func (s *Store) AllBatchVariantIDs() ([]string, error) {
	var ids []string
	err := s.batchVariants().Distinct("variant_id").Order("variant_id").Pluck("variant_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load batch variant ids: %w", err)
	}
	return ids, nil
}

// AllLiveVariantIDs returns every variant id in the live table, for the
// delivery profile sync.
func (s *Store) AllLiveVariantIDs() ([]string, error) {
	var ids []string
	err := s.variants().Where("variant_id IS NOT NULL").Order("variant_id").Pluck("variant_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load live variant ids: %w", err)
	}
	return ids, nil
}

// DeleteBatchVariantsByVariantIDs removes ids Shopify no longer knows about.
func (s *Store) DeleteBatchVariantsByVariantIDs(variantIDs []string) (int64, error) {
	var total int64
	for _, batch := range chunked(variantIDs, deleteBatchSize) {
		res := s.batchVariants().Where("variant_id IN ?", batch).Delete(&models.Variant{})
		if res.Error != nil {
			return total, fmt.Errorf("failed to delete batch variants: %w", res.Error)
		}
		total += res.RowsAffected
	}
	return total, nil
}

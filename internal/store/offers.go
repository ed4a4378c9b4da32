package store

import (
	"fmt"

	"gorm.io/gorm/clause"

	"preorder/internal/models"
)

const insertBatchSize = 1000

// ClearOfferStatuses resets the live offer statuses before a new batch run.
func (s *Store) ClearOfferStatuses() error {
	err := s.offers().Where("status IS NOT NULL").Update("status", nil).Error
	if err != nil {
		return fmt.Errorf("failed to clear offer statuses: %w", err)
	}
	return nil
}

// TruncateBatch empties both daily batch tables.
func (s *Store) TruncateBatch() error {
	if err := s.batchVariants().Where("1 = 1").Delete(&models.Variant{}).Error; err != nil {
		return fmt.Errorf("failed to truncate batch variants: %w", err)
	}
	if err := s.batchOffers().Where("1 = 1").Delete(&models.Offer{}).Error; err != nil {
		return fmt.Errorf("failed to truncate batch offers: %w", err)
	}
	return nil
}

// UpsertBatchOffers writes the run's offers into the batch table. The dedup
// key is internal_name, so re-running the same source never duplicates rows.
func (s *Store) UpsertBatchOffers(offers []models.Offer) error {
	if len(offers) == 0 {
		return nil
	}
	for _, batch := range chunked(offers, insertBatchSize) {
		err := s.batchOffers().Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "internal_name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"shipping_text", "discount_amount", "container_name", "container_arrival_mmdd",
			}),
		}).Create(&batch).Error
		if err != nil {
			return fmt.Errorf("failed to upsert batch offers: %w", err)
		}
	}
	return nil
}

// InsertOffers adds new rows to the live offer table.
func (s *Store) InsertOffers(offers []models.Offer) error {
	if len(offers) == 0 {
		return nil
	}
	for _, batch := range chunked(offers, insertBatchSize) {
		if err := s.offers().Create(&batch).Error; err != nil {
			return fmt.Errorf("failed to insert offers: %w", err)
		}
	}
	return nil
}

func (s *Store) LiveOffers() ([]models.Offer, error) {
	var offers []models.Offer
	if err := s.offers().Order("internal_name").Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("failed to load live offers: %w", err)
	}
	return offers, nil
}

func (s *Store) BatchOffers() ([]models.Offer, error) {
	var offers []models.Offer
	if err := s.batchOffers().Order("internal_name").Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("failed to load batch offers: %w", err)
	}
	return offers, nil
}

// OffersByStatus returns live offers carrying the given status.
func (s *Store) OffersByStatus(status string) ([]models.Offer, error) {
	var offers []models.Offer
	if err := s.offers().Where("status = ?", status).Order("internal_name").Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("failed to load offers with status %q: %w", status, err)
	}
	return offers, nil
}

// LiveOfferByName looks up a live offer by its internal name.
func (s *Store) LiveOfferByName(internalName string) (*models.Offer, error) {
	var offer models.Offer
	err := s.offers().Where("internal_name = ?", internalName).First(&offer).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load live offer %q: %w", internalName, err)
	}
	return &offer, nil
}

// BatchOfferByName looks up the batch snapshot for an internal name.
func (s *Store) BatchOfferByName(internalName string) (*models.Offer, error) {
	var offer models.Offer
	err := s.batchOffers().Where("internal_name = ?", internalName).First(&offer).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load batch offer %q: %w", internalName, err)
	}
	return &offer, nil
}

// SetStoqOfferID records the selling plan id returned by the Stoq API.
func (s *Store) SetStoqOfferID(offerID string, stoqOfferID int64) error {
	err := s.offers().Where("id = ?", offerID).Update("stoq_offer_id", stoqOfferID).Error
	if err != nil {
		return fmt.Errorf("failed to set stoq offer id for %s: %w", offerID, err)
	}
	return nil
}

func (s *Store) SetOfferStatus(offerID, status string) error {
	err := s.offers().Where("id = ?", offerID).Update("status", status).Error
	if err != nil {
		return fmt.Errorf("failed to set status %q for offer %s: %w", status, offerID, err)
	}
	return nil
}

// UpdateOfferTerms refreshes the shipping text and discount on a live offer
// from its batch snapshot.
func (s *Store) UpdateOfferTerms(internalName, shippingText string, discountAmount int) error {
	err := s.offers().Where("internal_name = ?", internalName).Updates(map[string]interface{}{
		"shipping_text":   shippingText,
		"discount_amount": discountAmount,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update terms for %q: %w", internalName, err)
	}
	return nil
}

// DeleteOffersByStatus purges live rows, used after Stoq deletion completes.
func (s *Store) DeleteOffersByStatus(status string) (int64, error) {
	res := s.offers().Where("status = ?", status).Delete(&models.Offer{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete offers with status %q: %w", status, res.Error)
	}
	return res.RowsAffected, nil
}

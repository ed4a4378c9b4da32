package models

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Variant links a Shopify product variant to an offer. VariantID is the
// numeric Shopify id kept as text, matching the hosted tables.
type Variant struct {
	ID        string `json:"id" gorm:"column:id;type:uuid;primaryKey"`
	OfferID   string `json:"offer_id" gorm:"column:offer_id;index;not null"`
	VariantID string `json:"variant_id" gorm:"column:variant_id;not null"`
}

func (v *Variant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

// DiffKey joins key columns with a separator that cannot appear in the data.
func DiffKey(containerName string, discountAmount int) string {
	return fmt.Sprintf("%s\x1f%d", containerName, discountAmount)
}

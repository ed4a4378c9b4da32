package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Offer statuses assigned by the batch diff and consumed by the Stoq steps.
const (
	StatusInsert          = "insert"
	StatusUpdate          = "update"
	StatusDelete          = "delete"
	StatusInsertCompleted = "insert-completed"
	StatusDeleteCompleted = "delete-completed"
)

// Offer is a preorder selling plan row. The same shape backs both the live
// offer table and the per-run batch table; the store decides which table a
// query targets.
type Offer struct {
	ID                   string  `json:"id" gorm:"column:id;type:uuid;primaryKey"`
	InternalName         string  `json:"internal_name" gorm:"column:internal_name;uniqueIndex;not null"`
	ShippingText         string  `json:"shipping_text" gorm:"column:shipping_text"`
	DiscountAmount       int     `json:"discount_amount" gorm:"column:discount_amount"`
	StoqOfferID          *int64  `json:"stoq_offer_id" gorm:"column:stoq_offer_id"`
	ContainerName        string  `json:"container_name" gorm:"column:container_name"`
	ContainerArrivalMMDD string  `json:"container_arrival_mmdd" gorm:"column:container_arrival_mmdd"`
	Status               *string `json:"status" gorm:"column:status"`
}

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

// DiffKey identifies an offer across runs. Internal names change when a
// container's arrival date moves, so the stable identity is the container
// plus its discount tier.
func (o *Offer) DiffKey() string {
	return DiffKey(o.ContainerName, o.DiscountAmount)
}

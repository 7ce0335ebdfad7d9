package model

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryStatus string

const (
	DeliveryStatusPending    DeliveryStatus = "pending"
	DeliveryStatusPrepared   DeliveryStatus = "prepared"
	DeliveryStatusInProgress DeliveryStatus = "in_progress"
	DeliveryStatusDelivered  DeliveryStatus = "delivered"
	DeliveryStatusFailed     DeliveryStatus = "failed"
)

// Delivery is one assignment of a family to a driver for an occasion
// and date. Parts and children flags are snapshots of the family at
// assignment time. For a given (occasion, date) a family appears in at
// most one active row; superseding runs append new rows.
type Delivery struct {
	ID         int64
	FamilyID   int64
	Date       time.Time
	Occasion   string
	DriverID   *int64
	PartnerID  *int64
	PartsCount int
	WithChild  bool
	Prepared   bool
	InProgress bool
	Delivered  bool
	RouteOrder int
	RunID      uuid.UUID
	Note       *string
	Comment    string
	CreatedAt  time.Time
}

// Status derives the single status label: the latest true flag wins.
func (d Delivery) Status() DeliveryStatus {
	switch {
	case d.Delivered:
		return DeliveryStatusDelivered
	case d.InProgress:
		return DeliveryStatusInProgress
	case d.Prepared:
		return DeliveryStatusPrepared
	default:
		return DeliveryStatusPending
	}
}

// InventoryNeeds aggregates what an occasion requires: one hygiene kit
// per family, one toy kit per family with children.
type InventoryNeeds struct {
	TotalFamilies    int
	TotalParts       int
	TotalToyKits     int
	TotalHygieneKits int
}

package model

import "time"

// RouteStop is one visit on a driver's route, enriched with family
// details for documents and notifications.
type RouteStop struct {
	Order      int
	FamilyID   int64
	FamilyName string
	Address    string
	Phone      string
	Parts      int
	WithChild  bool
	Status     DeliveryStatus
}

// DriverRoute is the ordered list of stops assigned to one driver.
type DriverRoute struct {
	Driver Driver
	Stops  []RouteStop
}

// RouteSheet aggregates every route of an occasion for export.
type RouteSheet struct {
	Occasion   string
	Date       time.Time
	TotalParts int
	Routes     []DriverRoute
}

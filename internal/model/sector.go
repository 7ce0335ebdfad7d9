package model

// Sector is a geographic zone used to match families to drivers.
// Coordinates mark the sector centroid used for nearest-sector lookup.
type Sector struct {
	ID         int64
	Name       string
	Latitude   *float64
	Longitude  *float64
	City       string
	PostalCode string
}

package model

// Driver is a volunteer delivering parcels within an assigned sector.
type Driver struct {
	ID          int64
	LastName    string
	FirstName   string
	Email       string
	Phone       string
	VehicleType string
	SectorID    *int64
	SectorName  string
	Role        string

	// CurrentLoad is the number of deliveries already assigned to the
	// driver for a given date. Derived per run, never stored.
	CurrentLoad int
}

func (d Driver) FullName() string {
	if d.FirstName == "" {
		return d.LastName
	}
	return d.FirstName + " " + d.LastName
}

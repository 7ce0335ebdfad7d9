package model

import "time"

type FamilyState string

const (
	FamilyStateNew               FamilyState = "Nouveau"
	FamilyStatePendingValidation FamilyState = "En attente"
	FamilyStateToVerify          FamilyState = "A vérifier"
	FamilyStateValidated         FamilyState = "Validé"
	FamilyStateRejected          FamilyState = "Rejeté"
	FamilyStateArchived          FamilyState = "Archivé"
)

// Family is a beneficiary household. Only validated families take part
// in assignment runs.
type Family struct {
	ID           int64
	Name         string
	ContactName  string
	AdultCount   int
	ChildCount   int
	Address      string
	SectorID     *int64
	CanTravel    bool
	Phone        string
	PhoneAlt     string
	Circumstance string
	State        FamilyState
	FirstContact *time.Time
	Notes        string
}

// PartsCount is the number of aid bundles the household receives,
// one part per person.
func (f Family) PartsCount() int {
	return f.AdultCount + f.ChildCount
}

func (f Family) HasChildren() bool {
	return f.ChildCount > 0
}

// FamilyStop is a family enriched with its resolved sector and
// coordinates, as consumed by an assignment run. Latitude and
// Longitude stay nil when the sector has no centroid.
type FamilyStop struct {
	ID          int64
	Name        string
	ContactName string
	Address     string
	Phone       string
	AdultCount  int
	ChildCount  int
	SectorID    *int64
	SectorName  string
	Latitude    *float64
	Longitude   *float64
}

func (s FamilyStop) PartsCount() int {
	return s.AdultCount + s.ChildCount
}

func (s FamilyStop) HasChildren() bool {
	return s.ChildCount > 0
}

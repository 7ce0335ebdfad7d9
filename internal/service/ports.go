package service

import (
	"context"
	"time"

	"github.com/amana-asso/delivery-service/internal/model"
)

// FamilyReader is the catalog view the services need: validated
// families with resolved sector and coordinates.
type FamilyReader interface {
	ListValidatedStops(ctx context.Context) ([]model.FamilyStop, error)
	GetStop(ctx context.Context, id int64) (*model.FamilyStop, error)
}

// DriverReader exposes the driver pool with per-date workload.
type DriverReader interface {
	ListWithLoad(ctx context.Context, date time.Time) ([]model.Driver, error)
	GetByID(ctx context.Context, id int64) (*model.Driver, error)
}

// DeliveryStore is the assignment table.
type DeliveryStore interface {
	AssignedFamilyIDs(ctx context.Context, occasion string, date time.Time) (map[int64]struct{}, error)
	InsertBatch(ctx context.Context, deliveries []model.Delivery) error
	Find(ctx context.Context, familyID int64, occasion string, date time.Time) (*model.Delivery, error)
	UpdateStatusFlags(ctx context.Context, id int64, prepared, inProgress, delivered bool) error
	SetFailureComment(ctx context.Context, id int64, comment string) error
	ListByOccasion(ctx context.Context, occasion string, date time.Time) ([]model.Delivery, error)
	ListUndeliveredByDriver(ctx context.Context, driverID int64, occasion string, date time.Time) ([]model.Delivery, error)
}

// Mailer sends a single message. Implementations report quota
// exhaustion as an error so callers can treat it as recoverable.
type Mailer interface {
	Send(to, subject, textBody, htmlBody string) error
}

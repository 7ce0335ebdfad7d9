package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/amana-asso/delivery-service/internal/model"
)

type DeliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// AssignedFamilyIDs returns the ids of families that already hold an
// active assignment (a row with a driver) for the occasion and date.
func (r *DeliveryRepository) AssignedFamilyIDs(ctx context.Context, occasion string, date time.Time) (map[int64]struct{}, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Raw(`
		SELECT family_id
		FROM deliveries
		WHERE occasion = ? AND delivery_date = ? AND driver_id IS NOT NULL
	`, occasion, date).Scan(&ids).Error; err != nil {
		return nil, err
	}

	assigned := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		assigned[id] = struct{}{}
	}
	return assigned, nil
}

// InsertBatch appends a run's assignments in a single statement.
func (r *DeliveryRepository) InsertBatch(ctx context.Context, deliveries []model.Delivery) error {
	if len(deliveries) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range deliveries {
			if err := tx.Exec(`
				INSERT INTO deliveries
					(family_id, delivery_date, occasion, driver_id, partner_id,
					 parts_count, with_child, prepared, in_progress, delivered,
					 route_order, run_id, comment)
				VALUES (?, ?, ?, ?, ?, ?, ?, FALSE, FALSE, FALSE, ?, ?, ?)
			`, d.FamilyID, d.Date, d.Occasion, d.DriverID, d.PartnerID,
				d.PartsCount, d.WithChild, d.RouteOrder, d.RunID, d.Comment).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Find returns the delivery matching the exact (family, occasion,
// date) triple. All three must match.
func (r *DeliveryRepository) Find(ctx context.Context, familyID int64, occasion string, date time.Time) (*model.Delivery, error) {
	var row model.Delivery
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, family_id, delivery_date AS date, occasion, driver_id,
		       partner_id, parts_count, with_child, prepared, in_progress,
		       delivered, route_order, run_id, note, comment, created_at
		FROM deliveries
		WHERE family_id = ? AND occasion = ? AND delivery_date = ?
		ORDER BY id ASC
		LIMIT 1
	`, familyID, occasion, date).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

// UpdateStatusFlags writes the three progress booleans of a row.
func (r *DeliveryRepository) UpdateStatusFlags(ctx context.Context, id int64, prepared, inProgress, delivered bool) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE deliveries
		SET prepared = ?, in_progress = ?, delivered = ?
		WHERE id = ?
	`, prepared, inProgress, delivered, id).Error
}

// SetFailureComment annotates a row without touching its flags.
func (r *DeliveryRepository) SetFailureComment(ctx context.Context, id int64, comment string) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE deliveries SET comment = ? WHERE id = ?
	`, comment, id).Error
}

// ListByOccasion returns every delivery for an occasion and date.
func (r *DeliveryRepository) ListByOccasion(ctx context.Context, occasion string, date time.Time) ([]model.Delivery, error) {
	var rows []model.Delivery
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, family_id, delivery_date AS date, occasion, driver_id,
		       partner_id, parts_count, with_child, prepared, in_progress,
		       delivered, route_order, run_id, note, comment, created_at
		FROM deliveries
		WHERE occasion = ? AND delivery_date = ?
		ORDER BY driver_id ASC, route_order ASC, id ASC
	`, occasion, date).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListUndeliveredByDriver returns assigned, not yet delivered rows for
// an occasion grouped by driver visiting order.
func (r *DeliveryRepository) ListUndeliveredByDriver(ctx context.Context, driverID int64, occasion string, date time.Time) ([]model.Delivery, error) {
	var rows []model.Delivery
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, family_id, delivery_date AS date, occasion, driver_id,
		       partner_id, parts_count, with_child, prepared, in_progress,
		       delivered, route_order, run_id, note, comment, created_at
		FROM deliveries
		WHERE driver_id = ? AND occasion = ? AND delivery_date = ?
		  AND delivered = FALSE
		ORDER BY route_order ASC, id ASC
	`, driverID, occasion, date).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

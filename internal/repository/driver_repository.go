package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/amana-asso/delivery-service/internal/model"
)

type DriverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

// ListWithLoad returns every driver annotated with the number of
// deliveries already assigned for the date, across all occasions.
// Drivers without a sector are included; sector matching happens in
// the assignment engine.
func (r *DriverRepository) ListWithLoad(ctx context.Context, date time.Time) ([]model.Driver, error) {
	var rows []model.Driver
	if err := r.db.WithContext(ctx).Raw(`
		SELECT d.id, d.last_name, d.first_name, d.email, d.phone,
		       d.vehicle_type, d.sector_id, d.role,
		       COALESCE(s.name, '') AS sector_name,
		       COALESCE(l.cnt, 0) AS current_load
		FROM drivers d
		LEFT JOIN sectors s ON s.id = d.sector_id
		LEFT JOIN (
			SELECT driver_id, COUNT(*) AS cnt
			FROM deliveries
			WHERE delivery_date = ? AND driver_id IS NOT NULL
			GROUP BY driver_id
		) l ON l.driver_id = d.id
		ORDER BY d.id ASC
	`, date).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DriverRepository) GetByID(ctx context.Context, id int64) (*model.Driver, error) {
	var row model.Driver
	if err := r.db.WithContext(ctx).Raw(`
		SELECT d.id, d.last_name, d.first_name, d.email, d.phone,
		       d.vehicle_type, d.sector_id, d.role,
		       COALESCE(s.name, '') AS sector_name
		FROM drivers d
		LEFT JOIN sectors s ON s.id = d.sector_id
		WHERE d.id = ?
		LIMIT 1
	`, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

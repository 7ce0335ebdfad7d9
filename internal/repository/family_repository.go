package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/amana-asso/delivery-service/internal/model"
)

type FamilyRepository struct {
	db *gorm.DB
}

func NewFamilyRepository(db *gorm.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// ListValidatedStops returns every validated family joined with its
// sector name and centroid. No ordering guarantee; callers group
// explicitly.
func (r *FamilyRepository) ListValidatedStops(ctx context.Context) ([]model.FamilyStop, error) {
	var rows []model.FamilyStop
	if err := r.db.WithContext(ctx).Raw(`
		SELECT f.id, f.name, f.contact_name, f.address, f.phone,
		       f.adult_count, f.child_count, f.sector_id,
		       COALESCE(s.name, '') AS sector_name,
		       s.latitude, s.longitude
		FROM families f
		LEFT JOIN sectors s ON s.id = f.sector_id
		WHERE f.state = ?
	`, model.FamilyStateValidated).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetStop returns a single family with its sector details.
func (r *FamilyRepository) GetStop(ctx context.Context, id int64) (*model.FamilyStop, error) {
	var row model.FamilyStop
	if err := r.db.WithContext(ctx).Raw(`
		SELECT f.id, f.name, f.contact_name, f.address, f.phone,
		       f.adult_count, f.child_count, f.sector_id,
		       COALESCE(s.name, '') AS sector_name,
		       s.latitude, s.longitude
		FROM families f
		LEFT JOIN sectors s ON s.id = f.sector_id
		WHERE f.id = ?
		LIMIT 1
	`, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

// SetSector records the sector resolved for a family address.
func (r *FamilyRepository) SetSector(ctx context.Context, familyID, sectorID int64) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE families SET sector_id = ? WHERE id = ?
	`, sectorID, familyID).Error
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/amana-asso/delivery-service/internal/model"
)

type SectorRepository struct {
	db *gorm.DB
}

func NewSectorRepository(db *gorm.DB) *SectorRepository {
	return &SectorRepository{db: db}
}

func (r *SectorRepository) List(ctx context.Context) ([]model.Sector, error) {
	var rows []model.Sector
	if err := r.db.WithContext(ctx).Raw(`
		SELECT s.id, s.name, s.latitude, s.longitude,
		       COALESCE(c.name, '') AS city,
		       COALESCE(c.postal_code, '') AS postal_code
		FROM sectors s
		LEFT JOIN cities c ON c.id = s.city_id
		ORDER BY s.name ASC
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

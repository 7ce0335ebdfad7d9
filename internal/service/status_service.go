package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/amana-asso/delivery-service/internal/cache"
	"github.com/amana-asso/delivery-service/internal/model"
)

// StatusService applies and queries delivery status transitions keyed
// by (family, occasion, date).
type StatusService struct {
	deliveries DeliveryStore
	families   FamilyReader
	cache      *cache.RedisCache
	log        zerolog.Logger
}

func NewStatusService(deliveries DeliveryStore, families FamilyReader, redis *cache.RedisCache, log zerolog.Logger) *StatusService {
	return &StatusService{
		deliveries: deliveries,
		families:   families,
		cache:      redis,
		log:        log,
	}
}

// StatusView is the public representation of a delivery status.
type StatusView struct {
	FamilyID     int64                `json:"family_id"`
	FamilyName   string               `json:"family_name"`
	Occasion     string               `json:"occasion"`
	Date         string               `json:"date"`
	Status       model.DeliveryStatus `json:"status"`
	Parts        int                  `json:"parts"`
	WithChildren bool                 `json:"with_children"`
	DriverID     *int64               `json:"driver_id"`
}

// StatusUpdate is one item of a batch status request.
type StatusUpdate struct {
	FamilyID int64  `json:"family_id"`
	Occasion string `json:"occasion"`
	Date     string `json:"date"`
	Status   string `json:"status"`
}

// BatchError reports a single failed batch item by its index.
type BatchError struct {
	Index  int          `json:"index"`
	Error  string       `json:"error"`
	Update StatusUpdate `json:"update"`
}

// BatchResult carries per-item success and failure counts.
type BatchResult struct {
	Success int          `json:"success"`
	Failed  int          `json:"failed"`
	Errors  []BatchError `json:"errors"`
}

// ValidStatus reports whether raw is an accepted transition label.
func ValidStatus(raw string) bool {
	switch model.DeliveryStatus(raw) {
	case model.DeliveryStatusPrepared, model.DeliveryStatusInProgress,
		model.DeliveryStatusDelivered, model.DeliveryStatusFailed:
		return true
	}
	return false
}

// UpdateStatus moves a delivery to the given status. Progress flags
// are monotonic: a later state sets every earlier flag. "failed"
// leaves the flags alone and records a timestamped annotation instead.
// The row is re-read before every mutation; storage is the source of
// truth.
func (s *StatusService) UpdateStatus(ctx context.Context, familyID int64, occasion string, date time.Time, status string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("%w: invalid status %q", ErrInvalidInput, status)
	}

	delivery, err := s.deliveries.Find(ctx, familyID, occasion, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	switch model.DeliveryStatus(status) {
	case model.DeliveryStatusPrepared:
		err = s.deliveries.UpdateStatusFlags(ctx, delivery.ID, true, false, false)
	case model.DeliveryStatusInProgress:
		err = s.deliveries.UpdateStatusFlags(ctx, delivery.ID, true, true, false)
	case model.DeliveryStatusDelivered:
		err = s.deliveries.UpdateStatusFlags(ctx, delivery.ID, true, true, true)
	case model.DeliveryStatusFailed:
		comment := fmt.Sprintf("échec - %s", time.Now().Format("02/01/2006 15:04"))
		err = s.deliveries.SetFailureComment(ctx, delivery.ID, comment)
	}
	if err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, cache.CollectionDeliveries); err != nil {
		s.log.Warn().Err(err).Msg("delivery cache invalidation failed")
	}

	s.log.Info().Int64("family_id", familyID).Str("occasion", occasion).Str("status", status).Msg("delivery status updated")
	return nil
}

// GetStatus derives the status label of a delivery, enriched with
// family details.
func (s *StatusService) GetStatus(ctx context.Context, familyID int64, occasion string, date time.Time) (*StatusView, error) {
	delivery, err := s.deliveries.Find(ctx, familyID, occasion, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	familyName := "unknown"
	if family, err := s.families.GetStop(ctx, familyID); err == nil {
		familyName = family.Name
	}

	return &StatusView{
		FamilyID:     familyID,
		FamilyName:   familyName,
		Occasion:     occasion,
		Date:         date.Format("2006-01-02"),
		Status:       delivery.Status(),
		Parts:        delivery.PartsCount,
		WithChildren: delivery.WithChild,
		DriverID:     delivery.DriverID,
	}, nil
}

// BatchUpdate applies each item independently; one bad item never
// aborts the batch.
func (s *StatusService) BatchUpdate(ctx context.Context, updates []StatusUpdate) *BatchResult {
	result := &BatchResult{Errors: []BatchError{}}

	for i, update := range updates {
		date, err := time.Parse("2006-01-02", update.Date)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, BatchError{Index: i, Error: "invalid date", Update: update})
			continue
		}

		if err := s.UpdateStatus(ctx, update.FamilyID, update.Occasion, date, update.Status); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, BatchError{Index: i, Error: err.Error(), Update: update})
			continue
		}
		result.Success++
	}

	return result
}

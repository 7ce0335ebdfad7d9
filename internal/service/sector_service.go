package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/amana-asso/delivery-service/internal/cache"
	"github.com/amana-asso/delivery-service/internal/geocode"
)

// SectorResolver maps an address to the nearest known sector.
type SectorResolver interface {
	ResolveSector(ctx context.Context, address string) (*geocode.SectorMatch, error)
}

// FamilySectorWriter persists a resolved sector on a family record.
type FamilySectorWriter interface {
	SetSector(ctx context.Context, familyID, sectorID int64) error
}

// SectorService backfills sectors on validated families whose intake
// record carries only a free-form address.
type SectorService struct {
	families FamilyReader
	writer   FamilySectorWriter
	resolver SectorResolver
	cache    *cache.RedisCache
	log      zerolog.Logger
}

func NewSectorService(families FamilyReader, writer FamilySectorWriter, resolver SectorResolver, redis *cache.RedisCache, log zerolog.Logger) *SectorService {
	return &SectorService{
		families: families,
		writer:   writer,
		resolver: resolver,
		cache:    redis,
		log:      log,
	}
}

// SectorResolutionResult summarizes one backfill run.
type SectorResolutionResult struct {
	Resolved []ResolvedFamily `json:"resolved"`
	Failed   []FailedFamily   `json:"failed"`
	Skipped  int              `json:"skipped"`
}

type ResolvedFamily struct {
	FamilyID   int64  `json:"family_id"`
	SectorID   int64  `json:"sector_id"`
	SectorName string `json:"sector_name"`
}

type FailedFamily struct {
	FamilyID int64  `json:"family_id"`
	Reason   string `json:"reason"`
}

// ResolveMissingSectors geocodes every validated family without a
// sector and records the nearest match. Individual failures are
// reported, not fatal; only context cancellation aborts the run.
func (s *SectorService) ResolveMissingSectors(ctx context.Context) (*SectorResolutionResult, error) {
	stops, err := s.families.ListValidatedStops(ctx)
	if err != nil {
		return nil, err
	}

	result := &SectorResolutionResult{}
	for _, stop := range stops {
		if stop.SectorID != nil {
			result.Skipped++
			continue
		}
		if stop.Address == "" {
			result.Failed = append(result.Failed, FailedFamily{FamilyID: stop.ID, Reason: "no address"})
			continue
		}

		match, err := s.resolver.ResolveSector(ctx, stop.Address)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			reason := "geocoding failed"
			if errors.Is(err, geocode.ErrNoResult) {
				reason = "address not found"
			}
			s.log.Warn().Err(err).Int64("family_id", stop.ID).Msg("sector resolution failed")
			result.Failed = append(result.Failed, FailedFamily{FamilyID: stop.ID, Reason: reason})
			continue
		}

		if err := s.writer.SetSector(ctx, stop.ID, match.SectorID); err != nil {
			return nil, err
		}
		result.Resolved = append(result.Resolved, ResolvedFamily{
			FamilyID:   stop.ID,
			SectorID:   match.SectorID,
			SectorName: match.SectorName,
		})
	}

	if len(result.Resolved) > 0 {
		if err := s.cache.Invalidate(ctx, cache.CollectionFamilies); err != nil {
			s.log.Warn().Err(err).Msg("cache invalidation failed")
		}
	}

	s.log.Info().
		Int("resolved", len(result.Resolved)).
		Int("failed", len(result.Failed)).
		Int("skipped", result.Skipped).
		Msg("sector backfill finished")
	return result, nil
}

package geocode

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/amana-asso/delivery-service/internal/cache"
	"github.com/amana-asso/delivery-service/internal/geo"
	"github.com/amana-asso/delivery-service/internal/model"
)

// Geocoder turns an address into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geo.Coordinates, error)
}

// SectorLister exposes the sector table for nearest-centroid lookup.
type SectorLister interface {
	List(ctx context.Context) ([]model.Sector, error)
}

// SectorMatch is the outcome of resolving an address: its coordinates
// and the nearest known sector.
type SectorMatch struct {
	SectorID   int64           `json:"sector_id"`
	SectorName string          `json:"sector_name"`
	City       string          `json:"city"`
	PostalCode string          `json:"postal_code"`
	Position   geo.Coordinates `json:"position"`
}

// Resolver geocodes addresses and maps them to the nearest sector.
// Lookups are cached, and outbound calls are paced to respect the
// provider rate limit.
type Resolver struct {
	geocoder Geocoder
	sectors  SectorLister
	cache    *cache.RedisCache
	cacheTTL time.Duration
	pace     time.Duration
	log      zerolog.Logger
}

func NewResolver(geocoder Geocoder, sectors SectorLister, redis *cache.RedisCache, cacheTTL, pace time.Duration, log zerolog.Logger) *Resolver {
	return &Resolver{
		geocoder: geocoder,
		sectors:  sectors,
		cache:    redis,
		cacheTTL: cacheTTL,
		pace:     pace,
		log:      log,
	}
}

// ResolveSector geocodes the address and returns the nearest sector
// with a centroid. Returns ErrNoResult when geocoding fails or no
// sector carries coordinates.
func (r *Resolver) ResolveSector(ctx context.Context, address string) (*SectorMatch, error) {
	key := cache.GeocodeCacheKey(address)

	var cached SectorMatch
	if err := r.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		r.log.Warn().Err(err).Msg("geocode cache read failed")
	}

	position, err := r.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	// Throttling, not concurrency: one paced call per lookup keeps the
	// batch under the provider quota.
	if r.pace > 0 {
		timer := time.NewTimer(r.pace)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	match, err := r.nearestSector(ctx, *position)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, match, r.cacheTTL); err != nil {
		r.log.Warn().Err(err).Msg("geocode cache write failed")
	}
	return match, nil
}

func (r *Resolver) nearestSector(ctx context.Context, position geo.Coordinates) (*SectorMatch, error) {
	sectors, err := r.sectors.List(ctx)
	if err != nil {
		return nil, err
	}

	var nearest *model.Sector
	minDistance := -1.0

	for i := range sectors {
		s := sectors[i]
		if s.Latitude == nil || s.Longitude == nil {
			continue
		}
		d := geo.Distance(&position, &geo.Coordinates{Lat: *s.Latitude, Lon: *s.Longitude})
		if nearest == nil || d < minDistance {
			nearest = &sectors[i]
			minDistance = d
		}
	}

	if nearest == nil {
		return nil, ErrNoResult
	}

	return &SectorMatch{
		SectorID:   nearest.ID,
		SectorName: nearest.Name,
		City:       nearest.City,
		PostalCode: nearest.PostalCode,
		Position:   position,
	}, nil
}

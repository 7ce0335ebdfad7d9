package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/amana-asso/delivery-service/internal/cache"
	"github.com/amana-asso/delivery-service/internal/config"
	"github.com/amana-asso/delivery-service/internal/model"
)

// UnresolvedSector buckets families whose address never resolved to a
// known sector. No driver carries this sector name, so these families
// stay unassigned and are reported in the run result.
const UnresolvedSector = "Non défini"

// AssignmentService runs delivery assignment for an occasion: it pulls
// eligible families and available drivers, allocates per sector, and
// orders each driver's bundle by nearest neighbor.
type AssignmentService struct {
	families   FamilyReader
	drivers    DriverReader
	deliveries DeliveryStore
	cache      *cache.RedisCache
	cfg        *config.Config
	log        zerolog.Logger
}

func NewAssignmentService(families FamilyReader, drivers DriverReader, deliveries DeliveryStore, redis *cache.RedisCache, cfg *config.Config, log zerolog.Logger) *AssignmentService {
	return &AssignmentService{
		families:   families,
		drivers:    drivers,
		deliveries: deliveries,
		cache:      redis,
		cfg:        cfg,
		log:        log,
	}
}

// AssignmentResult reports one run. UnassignedFamilyIDs lists families
// no driver could take (sector without drivers, or capacity exhausted).
type AssignmentResult struct {
	RunID               uuid.UUID        `json:"run_id"`
	Message             string           `json:"message"`
	Assignments         []model.Delivery `json:"assignments"`
	UnassignedFamilyIDs []int64          `json:"unassigned_family_ids"`
}

// AssignDeliveries allocates every unassigned validated family for the
// occasion and date. maxFamiliesPerDriver ≤ 0 falls back to the
// configured default. An empty eligible set is a success, not an
// error; an empty driver pool is not.
func (s *AssignmentService) AssignDeliveries(ctx context.Context, occasion string, date time.Time, maxFamiliesPerDriver int) (*AssignmentResult, error) {
	if occasion == "" {
		return nil, fmt.Errorf("%w: occasion is required", ErrInvalidInput)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if maxFamiliesPerDriver <= 0 {
		maxFamiliesPerDriver = s.cfg.Delivery.MaxFamiliesPerDriver
	}

	runID := uuid.New()
	log := s.log.With().Str("occasion", occasion).Str("date", date.Format("2006-01-02")).Str("run_id", runID.String()).Logger()
	log.Info().Int("max_per_driver", maxFamiliesPerDriver).Msg("starting assignment run")

	unassigned, err := s.unassignedFamilies(ctx, occasion, date)
	if err != nil {
		return nil, err
	}

	if len(unassigned) == 0 {
		return &AssignmentResult{
			RunID:       runID,
			Message:     "all families are already assigned",
			Assignments: []model.Delivery{},
		}, nil
	}

	drivers, err := s.drivers.ListWithLoad(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(drivers) == 0 {
		return nil, ErrNoDriversAvailable
	}

	bySector := groupFamiliesBySector(unassigned)

	// Deterministic sector order; map iteration would shuffle runs.
	sectorNames := make([]string, 0, len(bySector))
	for name := range bySector {
		sectorNames = append(sectorNames, name)
	}
	sort.Strings(sectorNames)

	var assignments []model.Delivery
	var leftover []int64

	for _, sectorName := range sectorNames {
		families := bySector[sectorName]

		var sectorDrivers []model.Driver
		for _, d := range drivers {
			if d.SectorName == sectorName {
				sectorDrivers = append(sectorDrivers, d)
			}
		}

		if len(sectorDrivers) == 0 {
			log.Warn().Str("sector", sectorName).Int("families", len(families)).Msg("no driver for sector, skipping")
			for _, f := range families {
				leftover = append(leftover, f.ID)
			}
			continue
		}

		routes, remaining := s.buildRoutes(families, sectorDrivers, maxFamiliesPerDriver, occasion, date, runID)
		assignments = append(assignments, routes...)
		for _, f := range remaining {
			leftover = append(leftover, f.ID)
			log.Warn().Int64("family_id", f.ID).Str("sector", sectorName).Msg("family left unassigned, drivers at capacity")
		}
	}

	if err := s.deliveries.InsertBatch(ctx, assignments); err != nil {
		return nil, fmt.Errorf("write assignments: %w", err)
	}
	if err := s.cache.Invalidate(ctx, cache.CollectionDeliveries); err != nil {
		log.Warn().Err(err).Msg("delivery cache invalidation failed")
	}

	driverIDs := make(map[int64]struct{})
	for _, a := range assignments {
		if a.DriverID != nil {
			driverIDs[*a.DriverID] = struct{}{}
		}
	}

	log.Info().Int("assigned", len(assignments)).Int("drivers", len(driverIDs)).Int("unassigned", len(leftover)).Msg("assignment run finished")

	return &AssignmentResult{
		RunID:               runID,
		Message:             fmt.Sprintf("%d deliveries assigned to %d driver(s)", len(assignments), len(driverIDs)),
		Assignments:         assignments,
		UnassignedFamilyIDs: leftover,
	}, nil
}

// unassignedFamilies is the eligible set: validated families with no
// active assignment for (occasion, date).
func (s *AssignmentService) unassignedFamilies(ctx context.Context, occasion string, date time.Time) ([]model.FamilyStop, error) {
	validated, err := s.families.ListValidatedStops(ctx)
	if err != nil {
		return nil, err
	}

	assigned, err := s.deliveries.AssignedFamilyIDs(ctx, occasion, date)
	if err != nil {
		return nil, err
	}

	eligible := make([]model.FamilyStop, 0, len(validated))
	for _, f := range validated {
		if _, ok := assigned[f.ID]; ok {
			continue
		}
		eligible = append(eligible, f)
	}
	return eligible, nil
}

// buildRoutes hands families to drivers least-loaded first. Allocation
// is first-come within the sector queue; only the order inside an
// already-allocated bundle is distance-aware. Known limitation carried
// over from the field-tested process.
func (s *AssignmentService) buildRoutes(families []model.FamilyStop, drivers []model.Driver, maxPerDriver int, occasion string, date time.Time, runID uuid.UUID) ([]model.Delivery, []model.FamilyStop) {
	remaining := make([]model.FamilyStop, len(families))
	copy(remaining, families)

	sort.SliceStable(drivers, func(i, j int) bool {
		return drivers[i].CurrentLoad < drivers[j].CurrentLoad
	})

	var routes []model.Delivery

	for _, driver := range drivers {
		if len(remaining) == 0 {
			break
		}

		capacity := maxPerDriver - driver.CurrentLoad
		if capacity <= 0 {
			continue
		}
		if capacity > len(remaining) {
			capacity = len(remaining)
		}

		bundle := remaining[:capacity]
		remaining = remaining[capacity:]

		driverID := driver.ID
		for i, family := range OptimizeRouteOrder(bundle) {
			routes = append(routes, model.Delivery{
				FamilyID:   family.ID,
				Date:       date,
				Occasion:   occasion,
				DriverID:   &driverID,
				PartsCount: family.PartsCount(),
				WithChild:  family.HasChildren(),
				RouteOrder: i + 1,
				RunID:      runID,
			})
		}
	}

	return routes, remaining
}

// InventoryNeeds totals what the occasion requires: one hygiene kit
// per family, one toy kit per family with children.
func (s *AssignmentService) InventoryNeeds(ctx context.Context, occasion string, date time.Time) (*model.InventoryNeeds, error) {
	deliveries, err := s.deliveries.ListByOccasion(ctx, occasion, date)
	if err != nil {
		return nil, err
	}

	needs := &model.InventoryNeeds{}
	for _, d := range deliveries {
		needs.TotalFamilies++
		needs.TotalParts += d.PartsCount
		needs.TotalHygieneKits++
		if d.WithChild {
			needs.TotalToyKits++
		}
	}
	return needs, nil
}

func groupFamiliesBySector(families []model.FamilyStop) map[string][]model.FamilyStop {
	groups := make(map[string][]model.FamilyStop)
	for _, f := range families {
		sector := f.SectorName
		if sector == "" {
			sector = UnresolvedSector
		}
		groups[sector] = append(groups[sector], f)
	}
	return groups
}

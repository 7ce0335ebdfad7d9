package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amana-asso/delivery-service/internal/cache"
	"github.com/amana-asso/delivery-service/internal/config"
	"github.com/amana-asso/delivery-service/internal/model"
)

func disabledCache(t *testing.T) *cache.RedisCache {
	t.Helper()
	redis, err := cache.NewRedisCache(config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	return redis
}

func testConfig() *config.Config {
	return &config.Config{
		Delivery: config.DeliveryConfig{
			MaxFamiliesPerDriver: 10,
			MinFamiliesPerDriver: 1,
			MaxFamiliesCeiling:   20,
		},
	}
}

func sectorStop(id int64, sector string, adults, children int, lat, lon float64) model.FamilyStop {
	return model.FamilyStop{
		ID:         id,
		SectorName: sector,
		AdultCount: adults,
		ChildCount: children,
		Latitude:   &lat,
		Longitude:  &lon,
	}
}

func newAssignmentService(t *testing.T, families *mockFamilyReader, drivers *mockDriverReader, deliveries *mockDeliveryStore) *AssignmentService {
	t.Helper()
	return NewAssignmentService(families, drivers, deliveries, disabledCache(t), testConfig(), zerolog.Nop())
}

func TestAssignDeliveriesLeastLoadedDriverFirst(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

	stops := []model.FamilyStop{
		sectorStop(1, "Centre", 2, 1, 48.8566, 2.3522),
		sectorStop(2, "Centre", 1, 0, 48.9566, 2.5022),
		sectorStop(3, "Centre", 3, 2, 48.8600, 2.3560),
	}

	families := new(mockFamilyReader)
	families.On("ListValidatedStops", ctx).Return(stops, nil)

	drivers := new(mockDriverReader)
	drivers.On("ListWithLoad", ctx, date).Return([]model.Driver{
		{ID: 102, SectorName: "Centre", CurrentLoad: 2},
		{ID: 101, SectorName: "Centre", CurrentLoad: 0},
	}, nil)

	deliveries := new(mockDeliveryStore)
	deliveries.On("AssignedFamilyIDs", ctx, "Ramadan 2026", date).Return(map[int64]struct{}{}, nil)
	deliveries.On("InsertBatch", ctx, mock.Anything).Return(nil)

	svc := newAssignmentService(t, families, drivers, deliveries)

	result, err := svc.AssignDeliveries(ctx, "Ramadan 2026", date, 2)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, result.RunID)

	// Driver 101 (load 0) takes the first two families of the sector
	// queue; driver 102 (load 2) is already at capacity. Family 3 stays
	// unassigned.
	require.Len(t, result.Assignments, 2)
	require.Equal(t, []int64{3}, result.UnassignedFamilyIDs)

	seen := map[int64]bool{}
	for i, a := range result.Assignments {
		require.NotNil(t, a.DriverID)
		require.Equal(t, int64(101), *a.DriverID)
		require.Equal(t, i+1, a.RouteOrder)
		require.Equal(t, result.RunID, a.RunID)
		require.False(t, seen[a.FamilyID], "family assigned twice")
		seen[a.FamilyID] = true
	}
	require.True(t, seen[1])
	require.True(t, seen[2])

	deliveries.AssertExpectations(t)
}

func TestAssignDeliveriesSnapshotsFamilyCounts(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

	stops := []model.FamilyStop{
		sectorStop(1, "Centre", 2, 3, 48.8566, 2.3522),
		sectorStop(2, "Centre", 1, 0, 48.8600, 2.3560),
	}

	families := new(mockFamilyReader)
	families.On("ListValidatedStops", ctx).Return(stops, nil)

	drivers := new(mockDriverReader)
	drivers.On("ListWithLoad", ctx, date).Return([]model.Driver{
		{ID: 101, SectorName: "Centre"},
	}, nil)

	deliveries := new(mockDeliveryStore)
	deliveries.On("AssignedFamilyIDs", ctx, "Aïd 2026", date).Return(map[int64]struct{}{}, nil)
	deliveries.On("InsertBatch", ctx, mock.Anything).Return(nil)

	svc := newAssignmentService(t, families, drivers, deliveries)

	result, err := svc.AssignDeliveries(ctx, "Aïd 2026", date, 0)
	require.NoError(t, err)
	require.Len(t, result.Assignments, 2)

	byFamily := map[int64]model.Delivery{}
	for _, a := range result.Assignments {
		byFamily[a.FamilyID] = a
	}
	require.Equal(t, 5, byFamily[1].PartsCount)
	require.True(t, byFamily[1].WithChild)
	require.Equal(t, 1, byFamily[2].PartsCount)
	require.False(t, byFamily[2].WithChild)
}

func TestAssignDeliveriesAllFamiliesAlreadyAssigned(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

	stops := []model.FamilyStop{
		sectorStop(1, "Centre", 2, 0, 48.85, 2.35),
	}

	families := new(mockFamilyReader)
	families.On("ListValidatedStops", ctx).Return(stops, nil)

	deliveries := new(mockDeliveryStore)
	deliveries.On("AssignedFamilyIDs", ctx, "Ramadan 2026", date).Return(map[int64]struct{}{1: {}}, nil)

	svc := newAssignmentService(t, families, new(mockDriverReader), deliveries)

	result, err := svc.AssignDeliveries(ctx, "Ramadan 2026", date, 0)
	require.NoError(t, err)
	require.Empty(t, result.Assignments)
	require.Equal(t, "all families are already assigned", result.Message)
	deliveries.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestAssignDeliveriesNoDrivers(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

	families := new(mockFamilyReader)
	families.On("ListValidatedStops", ctx).Return([]model.FamilyStop{
		sectorStop(1, "Centre", 2, 0, 48.85, 2.35),
	}, nil)

	drivers := new(mockDriverReader)
	drivers.On("ListWithLoad", ctx, date).Return([]model.Driver{}, nil)

	deliveries := new(mockDeliveryStore)
	deliveries.On("AssignedFamilyIDs", ctx, "Ramadan 2026", date).Return(map[int64]struct{}{}, nil)

	svc := newAssignmentService(t, families, drivers, deliveries)

	_, err := svc.AssignDeliveries(ctx, "Ramadan 2026", date, 0)
	require.ErrorIs(t, err, ErrNoDriversAvailable)
}

func TestAssignDeliveriesUnresolvedSectorStaysUnassigned(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

	families := new(mockFamilyReader)
	families.On("ListValidatedStops", ctx).Return([]model.FamilyStop{
		{ID: 1, AdultCount: 2}, // no sector resolved
		sectorStop(2, "Nord", 1, 0, 48.90, 2.35),
	}, nil)

	drivers := new(mockDriverReader)
	drivers.On("ListWithLoad", ctx, date).Return([]model.Driver{
		{ID: 101, SectorName: "Nord"},
	}, nil)

	deliveries := new(mockDeliveryStore)
	deliveries.On("AssignedFamilyIDs", ctx, "Ramadan 2026", date).Return(map[int64]struct{}{}, nil)
	deliveries.On("InsertBatch", ctx, mock.Anything).Return(nil)

	svc := newAssignmentService(t, families, drivers, deliveries)

	result, err := svc.AssignDeliveries(ctx, "Ramadan 2026", date, 0)
	require.NoError(t, err)
	require.Len(t, result.Assignments, 1)
	require.Equal(t, int64(2), result.Assignments[0].FamilyID)
	require.Equal(t, []int64{1}, result.UnassignedFamilyIDs)
}

func TestAssignDeliveriesRequiresOccasion(t *testing.T) {
	svc := newAssignmentService(t, new(mockFamilyReader), new(mockDriverReader), new(mockDeliveryStore))

	_, err := svc.AssignDeliveries(context.Background(), "", time.Now(), 0)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestInventoryNeeds(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

	deliveries := new(mockDeliveryStore)
	deliveries.On("ListByOccasion", ctx, "Ramadan 2026", date).Return([]model.Delivery{
		{FamilyID: 1, PartsCount: 3, WithChild: true},
		{FamilyID: 2, PartsCount: 1, WithChild: false},
		{FamilyID: 3, PartsCount: 5, WithChild: true},
	}, nil)

	svc := newAssignmentService(t, new(mockFamilyReader), new(mockDriverReader), deliveries)

	needs, err := svc.InventoryNeeds(ctx, "Ramadan 2026", date)
	require.NoError(t, err)
	require.Equal(t, 3, needs.TotalFamilies)
	require.Equal(t, 9, needs.TotalParts)
	require.Equal(t, 2, needs.TotalToyKits)
	require.Equal(t, 3, needs.TotalHygieneKits)
}

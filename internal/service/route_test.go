package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amana-asso/delivery-service/internal/model"
)

func routeStop(id int64, lat, lon float64) model.FamilyStop {
	return model.FamilyStop{ID: id, Latitude: &lat, Longitude: &lon}
}

func stopIDs(stops []model.FamilyStop) []int64 {
	ids := make([]int64, 0, len(stops))
	for _, s := range stops {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestOptimizeRouteOrderNearestNeighbor(t *testing.T) {
	// Start from the first stop, then always hop to the closest
	// remaining one: 1 -> 2 -> 4 -> 3.
	stops := []model.FamilyStop{
		routeStop(1, 48.8566, 2.3522),
		routeStop(3, 48.9566, 2.5022),
		routeStop(2, 48.8600, 2.3560),
		routeStop(4, 48.9000, 2.4000),
	}

	ordered := OptimizeRouteOrder(stops)

	require.Equal(t, []int64{1, 2, 4, 3}, stopIDs(ordered))
}

func TestOptimizeRouteOrderIsPermutation(t *testing.T) {
	stops := []model.FamilyStop{
		routeStop(10, 45.7640, 4.8357),
		routeStop(11, 45.7500, 4.8500),
		routeStop(12, 45.7700, 4.8300),
		routeStop(13, 45.7600, 4.8600),
	}

	ordered := OptimizeRouteOrder(stops)

	require.Len(t, ordered, len(stops))
	require.ElementsMatch(t, stopIDs(stops), stopIDs(ordered))
}

func TestOptimizeRouteOrderSmallInputsUnchanged(t *testing.T) {
	require.Empty(t, OptimizeRouteOrder(nil))

	single := []model.FamilyStop{routeStop(1, 48.85, 2.35)}
	require.Equal(t, []int64{1}, stopIDs(OptimizeRouteOrder(single)))
}

func TestOptimizeRouteOrderMissingCoordinatesLast(t *testing.T) {
	stops := []model.FamilyStop{
		routeStop(1, 48.8566, 2.3522),
		{ID: 2}, // never geocoded
		routeStop(3, 48.8600, 2.3560),
		{ID: 4},
	}

	ordered := OptimizeRouteOrder(stops)

	// Stops without coordinates drain last, in input order.
	require.Equal(t, []int64{1, 3, 2, 4}, stopIDs(ordered))
}

func TestOptimizeRouteOrderTiesKeepInputOrder(t *testing.T) {
	stops := []model.FamilyStop{
		routeStop(1, 48.0, 2.0),
		routeStop(2, 48.0, 2.1),
		routeStop(3, 48.0, 1.9),
	}

	first := OptimizeRouteOrder(stops)
	second := OptimizeRouteOrder(stops)

	// 2 and 3 are equidistant from the anchor; strictly-less keeps 2.
	require.Equal(t, []int64{1, 2, 3}, stopIDs(first))
	require.Equal(t, stopIDs(first), stopIDs(second))
}

package service

import (
	"github.com/amana-asso/delivery-service/internal/geo"
	"github.com/amana-asso/delivery-service/internal/model"
)

// OptimizeRouteOrder orders stops with a greedy nearest-neighbor
// heuristic: start from the first stop in input order and repeatedly
// visit the closest remaining one.
//
// The comparison is strictly-less, so ties keep their relative input
// order, and stops without coordinates (infinite distance from
// everything) drain last, still in input order. The result is always a
// permutation of the input; this is a heuristic, not a TSP solver.
func OptimizeRouteOrder(stops []model.FamilyStop) []model.FamilyStop {
	if len(stops) <= 1 {
		return stops
	}

	remaining := make([]model.FamilyStop, len(stops))
	copy(remaining, stops)

	ordered := make([]model.FamilyStop, 0, len(stops))
	current := remaining[0]
	ordered = append(ordered, current)
	remaining = remaining[1:]

	for len(remaining) > 0 {
		nearestIndex := 0
		minDistance := -1.0

		for i, candidate := range remaining {
			d := geo.Distance(stopCoords(current), stopCoords(candidate))
			if minDistance < 0 || d < minDistance {
				minDistance = d
				nearestIndex = i
			}
		}

		current = remaining[nearestIndex]
		ordered = append(ordered, current)
		remaining = append(remaining[:nearestIndex], remaining[nearestIndex+1:]...)
	}

	return ordered
}

func stopCoords(s model.FamilyStop) *geo.Coordinates {
	if s.Latitude == nil || s.Longitude == nil {
		return nil
	}
	return &geo.Coordinates{Lat: *s.Latitude, Lon: *s.Longitude}
}

package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistanceSamePoint(t *testing.T) {
	p := &Coordinates{Lat: 48.8566, Lon: 2.3522}
	require.Equal(t, 0.0, Distance(p, p))
}

func TestDistanceSymmetric(t *testing.T) {
	a := &Coordinates{Lat: 48.8566, Lon: 2.3522}
	b := &Coordinates{Lat: 45.7640, Lon: 4.8357}
	require.Equal(t, Distance(a, b), Distance(b, a))
}

func TestDistanceKnownPair(t *testing.T) {
	// Paris to Lyon, roughly 392 km as the crow flies.
	paris := &Coordinates{Lat: 48.8566, Lon: 2.3522}
	lyon := &Coordinates{Lat: 45.7640, Lon: 4.8357}

	d := Distance(paris, lyon)
	require.InDelta(t, 392, d, 5)
}

func TestDistanceMissingCoordinates(t *testing.T) {
	p := &Coordinates{Lat: 48.8566, Lon: 2.3522}

	require.True(t, math.IsInf(Distance(nil, p), 1))
	require.True(t, math.IsInf(Distance(p, nil), 1))
	require.True(t, math.IsInf(Distance(nil, nil), 1))
}

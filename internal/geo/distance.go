package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// Coordinates is a GPS point (latitude, longitude in degrees).
type Coordinates struct {
	Lat float64
	Lon float64
}

// Distance returns the great-circle distance between two points in
// kilometers. A nil coordinate means the point is unranked: the result
// is +Inf so such points always sort last in nearest-neighbor
// selection.
func Distance(a, b *Coordinates) float64 {
	if a == nil || b == nil {
		return math.Inf(1)
	}

	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// Package geo provides great-circle distance calculations for mission matching.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius in kilometers used by the
// spherical-Earth haversine approximation.
const EarthRadiusKm = 6371.0

// Unreachable is the sentinel distance returned when either point has an
// unknown location. It compares greater than any search radius, so candidates
// without coordinates are excluded from every radius-bounded search.
var Unreachable = math.Inf(1)

// Point represents a geographic coordinate with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the point carries no usable coordinates.
// A zero latitude or longitude is treated as "location unknown" rather than
// a position on the equator or prime meridian: profiles and missions created
// without geocoding carry zero values, and a distance computed against them
// would be meaningless.
func (p Point) IsZero() bool {
	return p.Lat == 0 || p.Lng == 0 ||
		math.IsNaN(p.Lat) || math.IsNaN(p.Lng)
}

// DistanceKm computes the haversine distance in kilometers between two points.
// If either point has unknown coordinates (zero or NaN latitude/longitude),
// it returns Unreachable instead of a distance to the coordinate origin.
//
// The result is never NaN: malformed input maps to Unreachable so downstream
// scoring never has to guard against NaN propagation.
func DistanceKm(a, b Point) float64 {
	if a.IsZero() || b.IsZero() {
		return Unreachable
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	d := EarthRadiusKm * c
	if math.IsNaN(d) {
		return Unreachable
	}
	return d
}

// IsUnreachable reports whether d is the unreachable sentinel distance.
func IsUnreachable(d float64) bool {
	return math.IsInf(d, 1)
}

// RoundKm rounds a distance to one decimal place for display.
// Unreachable distances are returned unchanged.
func RoundKm(d float64) float64 {
	if IsUnreachable(d) {
		return d
	}
	return math.Round(d*10) / 10
}

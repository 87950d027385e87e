// Package geo provides great-circle distance math for WGS-84 coordinates.
package geo

import "github.com/golang/geo/s2"

// EarthRadiusKm is Earth's mean radius in kilometers.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometers between two
// points given in decimal degrees. Inputs must be finite; non-finite inputs
// propagate NaN, callers filter upstream.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKmZeroForSamePoint(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{51.5074, -0.1278},
		{-33.8688, 151.2093},
		{89.9, 179.9},
	}
	for _, p := range points {
		assert.InDelta(t, 0, DistanceKm(p[0], p[1], p[0], p[1]), 1e-9)
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	d1 := DistanceKm(40.7128, -74.0060, 48.8566, 2.3522)
	d2 := DistanceKm(48.8566, 2.3522, 40.7128, -74.0060)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestDistanceKmKnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKm                 float64
		tolerance              float64
	}{
		{"London to Paris", 51.5074, -0.1278, 48.8566, 2.3522, 343.5, 2},
		{"equator quarter turn", 0, 0, 0, 90, math.Pi / 2 * EarthRadiusKm, 1},
		{"pole to pole", 90, 0, -90, 0, math.Pi * EarthRadiusKm, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.wantKm, got, tt.tolerance)
		})
	}
}

func TestDistanceKmNonNegative(t *testing.T) {
	d := DistanceKm(-10.5, 20.25, 60.1, -179.9)
	assert.GreaterOrEqual(t, d, 0.0)
}

func TestDistanceKmPropagatesNaN(t *testing.T) {
	assert.True(t, math.IsNaN(DistanceKm(math.NaN(), 0, 0, 0)))
}

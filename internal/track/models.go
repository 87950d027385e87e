package track

import (
	"time"

	"github.com/skyfleet/balloon-quake-aggregation/internal/quake"
)

// Frame is one fetched hourly snapshot of position records.
type Frame struct {
	Tag     string    `json:"tag"`
	At      time.Time `json:"at"` // nominal hour of the snapshot
	Records []any     `json:"-"`
}

// Sample is one observation of one balloon at one point in time.
// Latitude and longitude are always finite; the normalizer never constructs
// a sample that fails that gate.
type Sample struct {
	EntityID  string    `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
	Frame     string    `json:"frame"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  *float64  `json:"altitude,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Bearing   *float64  `json:"bearing,omitempty"`

	// Raw retains the source payload for diagnostics only.
	Raw any `json:"-"`
}

// NearestQuake links a track's latest position to the closest current quake.
type NearestQuake struct {
	Quake      quake.Quake `json:"quake"`
	DistanceKm float64     `json:"distance_km"`
}

// Track is the reconstructed history of one balloon within the lookback
// window. Samples are ordered by ascending timestamp; derived fields are
// recomputed in full on every build.
type Track struct {
	ID            string        `json:"id"`
	Samples       []Sample      `json:"samples"`
	Latest        Sample        `json:"latest"`
	FirstSeen     time.Time     `json:"first_seen"`
	LastSeen      time.Time     `json:"last_seen"`
	DistanceKm    float64       `json:"distance_km"`
	AltitudeDelta float64       `json:"altitude_delta"`
	SampleCount   int           `json:"sample_count"`
	Nearest       *NearestQuake `json:"nearest_quake,omitempty"`
}

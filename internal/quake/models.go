package quake

import "time"

// Quake is one normalized earthquake record.
type Quake struct {
	ID        string    `json:"id"`
	Magnitude *float64  `json:"magnitude"`
	Place     string    `json:"place"`
	Time      time.Time `json:"time"`
	URL       string    `json:"url"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

// FeatureCollection mirrors the upstream GeoJSON summary feed. Value-typed
// fields are decoded as `any` so a single malformed property never fails the
// whole payload.
type FeatureCollection struct {
	Features []Feature `json:"features"`
}

// Feature is one entry of the upstream feed.
type Feature struct {
	ID         string     `json:"id"`
	Properties Properties `json:"properties"`
	Geometry   Geometry   `json:"geometry"`
}

// Properties holds the per-event attributes the dashboard cares about.
type Properties struct {
	Mag   any    `json:"mag"`
	Place any    `json:"place"`
	Time  any    `json:"time"` // epoch milliseconds
	URL   string `json:"url"`
}

// Geometry holds the event coordinates in GeoJSON [lon, lat, depth] order.
type Geometry struct {
	Coordinates []any `json:"coordinates"`
}

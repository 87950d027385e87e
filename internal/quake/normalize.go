// Package quake normalizes the upstream earthquake feed into canonical records.
package quake

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// UnknownPlace is used when the feed omits a place description.
const UnknownPlace = "Unknown"

// Normalize converts a raw feature collection into canonical quake records.
// Features without a coordinate pair of at least two finite numbers are
// dropped. An unparseable occurrence time keeps the event with a zero
// time.Time marker; upstream sometimes ships those and the dashboard still
// wants the event on the map. Output order follows the feed's order.
func Normalize(fc FeatureCollection) []Quake {
	quakes := make([]Quake, 0, len(fc.Features))
	for _, f := range fc.Features {
		lon, lat, ok := coordinatePair(f.Geometry.Coordinates)
		if !ok {
			continue
		}

		q := Quake{
			ID:        f.ID,
			Place:     UnknownPlace,
			URL:       f.Properties.URL,
			Latitude:  lat,
			Longitude: lon,
		}
		if mag, ok := asFloat(f.Properties.Mag); ok {
			q.Magnitude = &mag
		}
		if place, ok := f.Properties.Place.(string); ok && place != "" {
			q.Place = place
		}
		if ms, ok := asFloat(f.Properties.Time); ok {
			q.Time = time.UnixMilli(int64(ms)).UTC()
		}
		quakes = append(quakes, q)
	}
	return quakes
}

// coordinatePair extracts [lon, lat] from a GeoJSON coordinates array,
// requiring at least two finite numeric elements.
func coordinatePair(coords []any) (lon, lat float64, ok bool) {
	if len(coords) < 2 {
		return 0, 0, false
	}
	lon, lonOK := asFloat(coords[0])
	lat, latOK := asFloat(coords[1])
	if !lonOK || !latOK {
		return 0, 0, false
	}
	return lon, lat, true
}

// asFloat coerces JSON-decoded values into a finite float64.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

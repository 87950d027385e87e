// Package track turns loosely-structured hourly position payloads into
// canonical per-balloon flight tracks.
package track

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// Alias tables for the record normalizer. Each semantic attribute probes an
// ordered list of candidate field names, short-circuiting on the first match.
var (
	idAliases      = []string{"id", "balloon_id", "device_id", "name", "serial"}
	latAliases     = []string{"lat", "latitude"}
	lonAliases     = []string{"lon", "lng", "longitude"}
	altAliases     = []string{"altitude", "alt", "height", "elevation"}
	speedAliases   = []string{"speed", "velocity", "ground_speed"}
	bearingAliases = []string{"bearing", "heading", "course"}
	timeAliases    = []string{"timestamp", "time", "ts", "datetime", "observed_at"}
	nestedAliases  = []string{"location", "position", "coordinates"}
)

// RecordsFrom unwraps one decoded frame payload into its position records.
// Accepted shapes: a bare array; an object carrying a "balloons" or
// "constellation" array; an object wrapping the payload under "data"
// (unwrapped recursively); any other object, whose values are iterated as
// records in sorted key order.
func RecordsFrom(payload any) []any {
	switch p := payload.(type) {
	case []any:
		return p
	case map[string]any:
		for _, key := range []string{"balloons", "constellation"} {
			if list, ok := p[key].([]any); ok {
				return list
			}
		}
		if inner, ok := p["data"]; ok {
			return RecordsFrom(inner)
		}
		keys := make([]string, 0, len(p))
		for k := range p {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		records := make([]any, 0, len(keys))
		for _, k := range keys {
			records = append(records, p[k])
		}
		return records
	default:
		return nil
	}
}

// NormalizeRecord converts one raw record into a Sample. The second return
// is false when the record has no finite latitude/longitude pair; such
// records are dropped silently, they are not errors. index is the record's
// position inside the frame, used only to synthesize an identifier when the
// record carries none.
func NormalizeRecord(rec any, frame Frame, index int) (Sample, bool) {
	switch r := rec.(type) {
	case []any:
		return normalizeArrayRecord(r, frame, index)
	case map[string]any:
		return normalizeObjectRecord(r, frame, index)
	default:
		return Sample{}, false
	}
}

// normalizeArrayRecord handles the bare [lat, lon, alt?] shape. Anonymous
// records get a frame+index identifier, which is not stable across refresh
// cycles.
func normalizeArrayRecord(r []any, frame Frame, index int) (Sample, bool) {
	if len(r) < 2 {
		return Sample{}, false
	}
	lat, latOK := asFloat(r[0])
	lon, lonOK := asFloat(r[1])
	if !latOK || !lonOK {
		return Sample{}, false
	}

	s := Sample{
		EntityID:  syntheticID(frame.Tag, index),
		Timestamp: frame.At,
		Frame:     frame.Tag,
		Latitude:  lat,
		Longitude: lon,
		Raw:       r,
	}
	if len(r) >= 3 {
		if alt, ok := asFloat(r[2]); ok {
			s.Altitude = &alt
		}
	}
	return s, true
}

func normalizeObjectRecord(r map[string]any, frame Frame, index int) (Sample, bool) {
	lat, lon, ok := extractCoordinates(r)
	if !ok {
		return Sample{}, false
	}

	s := Sample{
		EntityID:  syntheticID(frame.Tag, index),
		Timestamp: frame.At,
		Frame:     frame.Tag,
		Latitude:  lat,
		Longitude: lon,
		Raw:       r,
	}
	if id, ok := firstString(r, idAliases); ok {
		s.EntityID = id
	}
	s.Altitude = firstFloat(r, altAliases)
	s.Speed = firstFloat(r, speedAliases)
	s.Bearing = firstFloat(r, bearingAliases)
	if ts, ok := firstTime(r, timeAliases); ok {
		s.Timestamp = ts
	}
	return s, true
}

// extractCoordinates probes flat lat/lon aliases first, then a nested
// location/position/coordinates value. A nested coordinate-pair array is
// read in [lon, lat] order; a nested object uses named fields.
func extractCoordinates(r map[string]any) (lat, lon float64, ok bool) {
	latPtr := firstFloat(r, latAliases)
	lonPtr := firstFloat(r, lonAliases)
	if latPtr != nil && lonPtr != nil {
		return *latPtr, *lonPtr, true
	}

	for _, key := range nestedAliases {
		nested, present := r[key]
		if !present {
			continue
		}
		switch n := nested.(type) {
		case []any:
			if len(n) < 2 {
				continue
			}
			nLon, lonOK := asFloat(n[0])
			nLat, latOK := asFloat(n[1])
			if lonOK && latOK {
				return nLat, nLon, true
			}
		case map[string]any:
			nLat := firstFloat(n, latAliases)
			nLon := firstFloat(n, lonAliases)
			if nLat != nil && nLon != nil {
				return *nLat, *nLon, true
			}
		}
	}
	return 0, 0, false
}

func syntheticID(frameTag string, index int) string {
	return fmt.Sprintf("%s#%d", frameTag, index)
}

// firstFloat returns the first alias whose value parses as a finite number,
// or nil when every candidate is absent or unparseable.
func firstFloat(r map[string]any, aliases []string) *float64 {
	for _, key := range aliases {
		v, present := r[key]
		if !present {
			continue
		}
		if f, ok := asFloat(v); ok {
			return &f
		}
	}
	return nil
}

func firstString(r map[string]any, aliases []string) (string, bool) {
	for _, key := range aliases {
		v, present := r[key]
		if !present {
			continue
		}
		switch s := v.(type) {
		case string:
			if s != "" {
				return s, true
			}
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64), true
		case json.Number:
			return s.String(), true
		}
	}
	return "", false
}

func firstTime(r map[string]any, aliases []string) (time.Time, bool) {
	for _, key := range aliases {
		v, present := r[key]
		if !present {
			continue
		}
		if ts, ok := asTime(v); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

// asFloat coerces a JSON-decoded value into a finite float64.
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

// asTime parses a calendar instant from either an RFC3339 string or a unix
// timestamp. Numeric values above 1e12 are treated as milliseconds.
func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts.UTC(), true
			}
		}
		if unix, err := strconv.ParseInt(t, 10, 64); err == nil {
			return epochToTime(unix), true
		}
		return time.Time{}, false
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t <= 0 {
			return time.Time{}, false
		}
		return epochToTime(int64(t)), true
	default:
		return time.Time{}, false
	}
}

func epochToTime(unix int64) time.Time {
	if unix > 1e12 {
		return time.UnixMilli(unix).UTC()
	}
	return time.Unix(unix, 0).UTC()
}

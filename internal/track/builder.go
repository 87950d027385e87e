package track

import (
	"math"
	"sort"

	"github.com/skyfleet/balloon-quake-aggregation/internal/geo"
)

// Build flattens every frame through the record normalizer, groups samples
// by entity identifier, and derives per-track summary metrics. Tracks come
// back in first-appearance order of their identifiers; consumers impose
// their own ordering.
func Build(frames []Frame) []Track {
	groups := make(map[string][]Sample)
	var order []string

	for _, frame := range frames {
		for i, rec := range frame.Records {
			s, ok := NormalizeRecord(rec, frame, i)
			if !ok {
				continue
			}
			if _, seen := groups[s.EntityID]; !seen {
				order = append(order, s.EntityID)
			}
			groups[s.EntityID] = append(groups[s.EntityID], s)
		}
	}

	tracks := make([]Track, 0, len(order))
	for _, id := range order {
		samples := groups[id]
		if len(samples) == 0 {
			continue
		}
		tracks = append(tracks, buildOne(id, samples))
	}
	return tracks
}

func buildOne(id string, samples []Sample) Track {
	// Stable sort keeps the original relative order of equal timestamps.
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Timestamp.Before(samples[j].Timestamp)
	})

	latest := samples[len(samples)-1]
	return Track{
		ID:            id,
		Samples:       samples,
		Latest:        latest,
		FirstSeen:     samples[0].Timestamp,
		LastSeen:      latest.Timestamp,
		DistanceKm:    cumulativeDistance(samples),
		AltitudeDelta: altitudeOrZero(latest) - altitudeOrZero(samples[0]),
		SampleCount:   len(samples),
	}
}

// cumulativeDistance sums the consecutive-pair haversine distances along the
// track. Non-finite coordinates cannot occur post-normalization but are
// skipped defensively.
func cumulativeDistance(samples []Sample) float64 {
	var total float64
	prev := -1
	for i, s := range samples {
		if !finiteCoords(s) {
			continue
		}
		if prev >= 0 {
			total += geo.DistanceKm(samples[prev].Latitude, samples[prev].Longitude, s.Latitude, s.Longitude)
		}
		prev = i
	}
	return total
}

func finiteCoords(s Sample) bool {
	return !math.IsNaN(s.Latitude) && !math.IsInf(s.Latitude, 0) &&
		!math.IsNaN(s.Longitude) && !math.IsInf(s.Longitude, 0)
}

func altitudeOrZero(s Sample) float64 {
	if s.Altitude == nil {
		return 0
	}
	return *s.Altitude
}

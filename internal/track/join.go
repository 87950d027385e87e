package track

import (
	"github.com/skyfleet/balloon-quake-aggregation/internal/geo"
	"github.com/skyfleet/balloon-quake-aggregation/internal/quake"
)

// AttachNearest links every track's latest position to its closest quake.
// With an empty quake set no link is attached. Linear scan is fine here:
// both sets are bounded to hundreds and the join runs once per refresh
// cycle, not per request.
func AttachNearest(tracks []Track, quakes []quake.Quake) {
	for i := range tracks {
		tracks[i].Nearest = nearest(tracks[i].Latest, quakes)
	}
}

// nearest returns the globally closest quake to the sample, or nil when the
// quake set is empty. Strict < keeps the earliest-encountered quake on ties.
func nearest(s Sample, quakes []quake.Quake) *NearestQuake {
	var best *NearestQuake
	for _, q := range quakes {
		d := geo.DistanceKm(s.Latitude, s.Longitude, q.Latitude, q.Longitude)
		if best == nil || d < best.DistanceKm {
			best = &NearestQuake{Quake: q, DistanceKm: d}
		}
	}
	return best
}

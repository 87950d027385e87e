package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the refresh pipeline.
type Metrics struct {
	RefreshCycles     prometheus.Counter
	RefreshDuration   prometheus.Histogram
	FrameFetchErrors  prometheus.Counter
	QuakeFetchErrors  prometheus.Counter
	TracksPublished   prometheus.Gauge
	QuakesPublished   prometheus.Gauge
	InquiriesReceived prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RefreshCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "balloon_agg",
			Name:      "refresh_cycles_total",
			Help:      "Total completed refresh cycles.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "balloon_agg",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a full fetch-normalize-join refresh cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		FrameFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "balloon_agg",
			Name:      "frame_fetch_errors_total",
			Help:      "Position-frame fetches excluded from a cycle due to failure or timeout.",
		}),
		QuakeFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "balloon_agg",
			Name:      "quake_fetch_errors_total",
			Help:      "Quake feed fetch failures; the cycle proceeds with zero quakes.",
		}),
		TracksPublished: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "balloon_agg",
			Name:      "tracks_published",
			Help:      "Tracks in the currently published snapshot.",
		}),
		QuakesPublished: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "balloon_agg",
			Name:      "quakes_published",
			Help:      "Quakes in the currently published snapshot.",
		}),
		InquiriesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "balloon_agg",
			Name:      "inquiries_received_total",
			Help:      "Accepted free-text inquiries.",
		}),
	}

	prometheus.MustRegister(
		m.RefreshCycles,
		m.RefreshDuration,
		m.FrameFetchErrors,
		m.QuakeFetchErrors,
		m.TracksPublished,
		m.QuakesPublished,
		m.InquiriesReceived,
	)
	return m
}

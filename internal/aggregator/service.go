// Package aggregator owns the refresh cycle and the published snapshot that
// query operations read from.
package aggregator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/skyfleet/balloon-quake-aggregation/internal/observability"
	"github.com/skyfleet/balloon-quake-aggregation/internal/quake"
	"github.com/skyfleet/balloon-quake-aggregation/internal/track"
)

var (
	// ErrNotFound is returned when no track matches the requested identifier.
	ErrNotFound = errors.New("no balloon with that identifier")

	// ErrNotReady is returned before the first refresh cycle completes.
	ErrNotReady = errors.New("no snapshot published yet")
)

// FrameSource fetches one position frame per lookback hour.
type FrameSource interface {
	FetchFrame(ctx context.Context, hoursAgo int) (track.Frame, error)
}

// QuakeSource fetches the current normalized quake collection.
type QuakeSource interface {
	Fetch(ctx context.Context) ([]quake.Quake, error)
}

// Snapshot is the complete published output of one refresh cycle. It is
// built fully before publication and never mutated afterwards, so readers
// always see an internally consistent view.
type Snapshot struct {
	Tracks      []track.Track
	Quakes      []quake.Quake
	FrameCount  int
	RefreshedAt time.Time
	ChangeToken string
}

// Meta is the refresh metadata attached to query responses.
type Meta struct {
	RefreshedAt time.Time `json:"refreshed_at"`
	ChangeToken string    `json:"change_token"`
	FrameCount  int       `json:"frame_count"`
	TrackCount  int       `json:"track_count"`
	QuakeCount  int       `json:"quake_count"`
}

// Overview is the full dashboard payload: enriched tracks, a capped set of
// recent quakes, and refresh metadata.
type Overview struct {
	Balloons []track.Track `json:"balloons"`
	Quakes   []quake.Quake `json:"quakes"`
	Meta     Meta          `json:"meta"`
}

// QuakeList is the uncapped quake collection with refresh metadata.
type QuakeList struct {
	Quakes []quake.Quake `json:"quakes"`
	Meta   Meta          `json:"meta"`
}

// Service runs refresh cycles and serves the latest completed snapshot.
type Service struct {
	frames     FrameSource
	quakes     QuakeSource
	lookback   int
	timeout    time.Duration
	quakeLimit int
	clock      clockwork.Clock
	metrics    *observability.Metrics

	mu       sync.RWMutex
	snapshot *Snapshot
}

// Options tune a Service beyond its two sources.
type Options struct {
	LookbackHours int           // frames per cycle, default 24
	FetchTimeout  time.Duration // per-fetch timeout, default 10s
	QuakeLimit    int           // quakes included in the overview, default 20
	Clock         clockwork.Clock
	Metrics       *observability.Metrics // optional
}

// New creates a Service. Sources are required; zero-valued options get
// defaults.
func New(frames FrameSource, quakes QuakeSource, opts Options) *Service {
	if opts.LookbackHours <= 0 {
		opts.LookbackHours = 24
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	if opts.QuakeLimit <= 0 {
		opts.QuakeLimit = 20
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Service{
		frames:     frames,
		quakes:     quakes,
		lookback:   opts.LookbackHours,
		timeout:    opts.FetchTimeout,
		quakeLimit: opts.QuakeLimit,
		clock:      opts.Clock,
		metrics:    opts.Metrics,
	}
}

// Refresh runs one full cycle: fan-out frame fetches concurrent with the
// quake fetch, normalize, build tracks, join, and atomically publish a new
// snapshot. A cycle always publishes, even when every fetch failed; it never
// lets a failure escape its boundary.
func (s *Service) Refresh(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("aggregator: refresh cycle panicked, previous snapshot stays published: %v", r)
		}
	}()

	start := s.clock.Now()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		frames   []track.Frame
		quakeSet []quake.Quake
	)

	for h := 0; h < s.lookback; h++ {
		wg.Add(1)
		go func(h int) {
			defer wg.Done()

			fctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			frame, err := s.frames.FetchFrame(fctx, h)
			if err != nil {
				// Excluded from this cycle; the next cycle is the retry.
				log.Printf("aggregator: frame %02d excluded: %v", h, err)
				s.countFrameError()
				return
			}
			mu.Lock()
			frames = append(frames, frame)
			mu.Unlock()
		}(h)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		qctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		quakes, err := s.quakes.Fetch(qctx)
		if err != nil {
			log.Printf("aggregator: quake feed unavailable, cycle proceeds with zero quakes: %v", err)
			s.countQuakeError()
			return
		}
		mu.Lock()
		quakeSet = quakes
		mu.Unlock()
	}()

	wg.Wait()

	// Fetch-completion order is arbitrary; chronological sample ordering
	// needs frames sorted by nominal hour.
	sort.Slice(frames, func(i, j int) bool { return frames[i].At.Before(frames[j].At) })

	tracks := track.Build(frames)
	track.AttachNearest(tracks, quakeSet)

	// Most recently seen first for the dashboard.
	sort.SliceStable(tracks, func(i, j int) bool { return tracks[i].LastSeen.After(tracks[j].LastSeen) })

	snap := &Snapshot{
		Tracks:      tracks,
		Quakes:      quakeSet,
		FrameCount:  len(frames),
		RefreshedAt: s.clock.Now(),
		ChangeToken: changeToken(tracks, quakeSet),
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RefreshCycles.Inc()
		s.metrics.RefreshDuration.Observe(s.clock.Since(start).Seconds())
		s.metrics.TracksPublished.Set(float64(len(tracks)))
		s.metrics.QuakesPublished.Set(float64(len(quakeSet)))
	}
	log.Printf("aggregator: published snapshot: %d frames, %d tracks, %d quakes", len(frames), len(tracks), len(quakeSet))
}

// Ready reports whether at least one refresh cycle has completed.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot != nil
}

// Overview returns all tracks with derived metrics and nearest-quake links,
// the most recent quakes up to the configured cap, and refresh metadata.
func (s *Service) Overview() (Overview, error) {
	snap, err := s.current()
	if err != nil {
		return Overview{}, err
	}

	quakes := snap.Quakes
	if len(quakes) > s.quakeLimit {
		quakes = quakes[:s.quakeLimit]
	}
	return Overview{
		Balloons: snap.Tracks,
		Quakes:   quakes,
		Meta:     snap.meta(),
	}, nil
}

// Balloon returns one track by exact identifier match.
func (s *Service) Balloon(id string) (track.Track, error) {
	snap, err := s.current()
	if err != nil {
		return track.Track{}, err
	}
	for _, tr := range snap.Tracks {
		if tr.ID == id {
			return tr, nil
		}
	}
	return track.Track{}, ErrNotFound
}

// Quakes returns the full current quake collection with refresh metadata.
func (s *Service) Quakes() (QuakeList, error) {
	snap, err := s.current()
	if err != nil {
		return QuakeList{}, err
	}
	return QuakeList{Quakes: snap.Quakes, Meta: snap.meta()}, nil
}

// current returns the latest completed snapshot without blocking on any
// in-progress refresh.
func (s *Service) current() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, ErrNotReady
	}
	return s.snapshot, nil
}

func (snap *Snapshot) meta() Meta {
	return Meta{
		RefreshedAt: snap.RefreshedAt,
		ChangeToken: snap.ChangeToken,
		FrameCount:  snap.FrameCount,
		TrackCount:  len(snap.Tracks),
		QuakeCount:  len(snap.Quakes),
	}
}

func (s *Service) countFrameError() {
	if s.metrics != nil {
		s.metrics.FrameFetchErrors.Inc()
	}
}

func (s *Service) countQuakeError() {
	if s.metrics != nil {
		s.metrics.QuakeFetchErrors.Inc()
	}
}

// changeToken derives an opaque marker from the published content so clients
// can cheaply detect snapshot changes between polls. It must differ whenever
// content differs, which includes feed revisions that keep the same event
// identifiers (a magnitude or place correction, moved coordinates); changing
// between identical cycles is permitted.
func changeToken(tracks []track.Track, quakes []quake.Quake) string {
	h := sha256.New()
	for _, tr := range tracks {
		fmt.Fprintf(h, "%s|%d|%d|%v|%v|%v",
			tr.ID, tr.LastSeen.UnixNano(), tr.SampleCount,
			tr.Latest.Latitude, tr.Latest.Longitude, tr.DistanceKm)
		if tr.Nearest != nil {
			fmt.Fprintf(h, "|%s|%v", tr.Nearest.Quake.ID, tr.Nearest.DistanceKm)
		}
		h.Write([]byte(";"))
	}
	for _, q := range quakes {
		fmt.Fprintf(h, "%s|%v|%v|%d|%s|%s",
			q.ID, q.Latitude, q.Longitude, q.Time.UnixMilli(), q.Place, q.URL)
		if q.Magnitude != nil {
			fmt.Fprintf(h, "|%v", *q.Magnitude)
		}
		h.Write([]byte(";"))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

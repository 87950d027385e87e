package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyfleet/balloon-quake-aggregation/internal/aggregator"
	"github.com/skyfleet/balloon-quake-aggregation/internal/quake"
	"github.com/skyfleet/balloon-quake-aggregation/internal/track"
)

type stubFrames struct{}

func (stubFrames) FetchFrame(ctx context.Context, hoursAgo int) (track.Frame, error) {
	return track.Frame{}, nil
}

type stubQuakes struct{}

func (stubQuakes) Fetch(ctx context.Context) ([]quake.Quake, error) {
	return nil, nil
}

func newStubService() *aggregator.Service {
	return aggregator.New(stubFrames{}, stubQuakes{}, aggregator.Options{LookbackHours: 1})
}

func TestStartRejectsSubSecondInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Minute, 500 * time.Millisecond} {
		s := New(newStubService(), interval)
		err := s.Start()
		assert.Error(t, err, "interval %s", interval)
	}
}

func TestStartAcceptsWholeSecondInterval(t *testing.T) {
	s := New(newStubService(), time.Hour)
	require.NoError(t, s.Start())
	s.Stop()
}

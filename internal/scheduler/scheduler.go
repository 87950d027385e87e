package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/skyfleet/balloon-quake-aggregation/internal/aggregator"
)

// Scheduler drives periodic refresh cycles of the aggregation service.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *aggregator.Service
	interval  time.Duration
}

// New creates a Scheduler that refreshes on the given interval.
func New(service *aggregator.Service, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		interval:  interval,
	}
}

// Start schedules the periodic refresh job and starts the underlying
// scheduler. The eager startup refresh is the caller's responsibility; this
// only owns the cadence.
func (s *Scheduler) Start() error {
	seconds := int(s.interval.Seconds())
	if seconds < 1 {
		return fmt.Errorf("refresh interval %s is below the 1s minimum", s.interval)
	}

	_, err := s.scheduler.Every(seconds).Seconds().Do(func() {
		log.Println("scheduler: running refresh cycle")
		s.service.Refresh(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

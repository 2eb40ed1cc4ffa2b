package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler wraps a gocron scheduler running in the configured time zone.
type Scheduler struct {
	s *gocron.Scheduler
}

// NewScheduler returns a stopped scheduler; nil loc means time.Local.
func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()
	return &Scheduler{s: s}
}

// RegisterDigest schedules d with a five-field cron expression. An empty
// expression disables the job and registers nothing.
func (s *Scheduler) RegisterDigest(expr string, d *DueDigest) error {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}
	_, err := s.s.Cron(expr).Tag("due-digest").Do(func() {
		_, _ = d.Run(context.Background())
	})
	return err
}

// RegisterPurge runs purge every interval, starting one interval from now.
func (s *Scheduler) RegisterPurge(every time.Duration, purge PurgeFunc) error {
	if every <= 0 {
		return fmt.Errorf("purge interval must be positive, got %s", every)
	}
	_, err := s.s.Every(every).WaitForSchedule().Tag("idempotency-purge").Do(func() {
		_, _ = runPurge(context.Background(), purge, 30*time.Second)
	})
	return err
}

// Len returns the number of scheduled jobs.
func (s *Scheduler) Len() int { return len(s.s.Jobs()) }

// Start runs the scheduler in the background.
func (s *Scheduler) Start() { s.s.StartAsync() }

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() { s.s.Stop() }

package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/listensync/internal/shared"
)

// Job is one scheduled pass. The trigger is the time the pass started.
type Job func(ctx context.Context, trigger time.Time)

// Scheduler repeats a job with a fixed pause between passes.
//
// The pause starts when a pass ends, so a slow pass pushes every later pass back. Stopping takes effect between
// passes; a running pass finishes first unless its context is cancelled.
type Scheduler struct {
	interval time.Duration
	logger   *log.Logger
	now      func() time.Time

	mu   sync.Mutex
	stop chan struct{}
}

// NewScheduler creates a Scheduler that waits interval between passes.
func NewScheduler(interval time.Duration, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Scheduler{
		interval: interval,
		logger:   shared.WithLogger(logger, "component", "scheduler"),
		now:      time.Now,
	}
}

// Run executes job immediately and then after every interval until ctx is done or [Scheduler.Stop] is called.
//
// Returns nil after Stop and the context error after cancellation. Calling Run while already running is a no-op.
func (s *Scheduler) Run(ctx context.Context, job Job) error {
	if job == nil {
		return nil
	}

	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.stop == stop {
			s.stop = nil
		}
		s.mu.Unlock()
	}()

	for pass := 1; ; pass++ {
		started := s.now()
		s.logger.Debug("starting pass", "pass", pass)
		job(ctx, started)

		next := s.now().Add(s.interval)
		s.logger.Info("next sync scheduled", "at", next.Format(time.RFC3339), "interval", s.interval)

		timer := time.NewTimer(s.interval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scheduler stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-stop:
			timer.Stop()
			s.logger.Info("scheduler stopped")
			return nil
		}
	}
}

// Stop ends a running [Scheduler.Run] after its current pass.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.stop = nil
}

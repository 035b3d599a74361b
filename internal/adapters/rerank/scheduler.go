package rerank

import (
	"context"
	"fmt"
	"time"

	"github.com/examworld/awr/pkg/logger"
)

// Default scheduler configuration constants.
const (
	defaultInterval         = 5 * time.Minute
	schedulerShutdownWindow = 5 * time.Second
)

// Scheduler runs periodic drift-correction passes and accepts coalesced
// on-demand triggers. It corrects the transient rank drift left behind by
// interleaved passes from concurrent submitters.
type Scheduler struct {
	engine   *Engine
	interval time.Duration

	// Coalesced on-demand trigger; capacity 1 so pending triggers collapse.
	trigger chan struct{}

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// SchedulerOption applies a configuration option to the Scheduler.
type SchedulerOption func(*Scheduler)

// WithInterval sets the periodic pass interval.
func WithInterval(interval time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithSchedulerLogger sets a custom logger for the scheduler.
func WithSchedulerLogger(l logger.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScheduler creates a scheduler around the given engine.
func NewScheduler(engine *Engine, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		engine:   engine,
		interval: defaultInterval,
		trigger:  make(chan struct{}, 1),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("rerank-scheduler")
	}
	return s
}

// Start launches the scheduler loop until ctx is canceled or Shutdown is called.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdown:
			return
		case <-ticker.C:
			s.runPass(ctx, "periodic")
		case <-s.trigger:
			s.runPass(ctx, "on-demand")
		}
	}
}

func (s *Scheduler) runPass(ctx context.Context, reason string) {
	res, err := s.engine.Recompute(ctx)
	if err != nil {
		s.logger.Error(ctx, "scheduled recomputation failed",
			logger.String("reason", reason),
			logger.Error(err),
		)
		return
	}
	s.logger.Info(ctx, "scheduled recomputation finished",
		logger.String("reason", reason),
		logger.Int("assigned", res.Assigned),
		logger.Int("failed", res.Failed),
	)
}

// Trigger requests an on-demand pass without blocking. Triggers arriving
// while one is already pending coalesce into a single pass.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Shutdown gracefully stops the scheduler.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	select {
	case <-s.shutdown:
		// Already shut down.
		return nil
	default:
		close(s.shutdown)
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler shutdown timed out: %w", ctx.Err())
	case <-time.After(schedulerShutdownWindow):
		s.logger.Warn(ctx, "scheduler shutdown timed out")
		return fmt.Errorf("scheduler shutdown timed out")
	}
}

// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/examworld/awr/internal/adapters/repository"
	"github.com/examworld/awr/internal/adapters/rerank"
	"github.com/examworld/awr/internal/domain/marks"
	"github.com/examworld/awr/internal/domain/model"
	"github.com/examworld/awr/pkg/logger"
	"github.com/examworld/awr/pkg/metrics"
)

// Submission is the outcome of a submit operation.
//
// Conflict means the email already belongs to a record with a different
// name; the existing record is returned untouched and the caller decides
// whether to retry with the stored name.
type Submission struct {
	Record   model.Participant
	Conflict bool
	Created  bool
}

// Service implements the submission coordinator and the read operations
// exposed over HTTP.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	generator *marks.Generator
	engine    *rerank.Engine
	scheduler *rerank.Scheduler

	// Configuration
	dbPath         string
	subjects       []string
	rerankInterval time.Duration

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDBPath sets the SQLite database path.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithSubjects overrides the exam subject list.
func WithSubjects(subjects []string) Option {
	return func(s *Service) {
		if len(subjects) > 0 {
			s.subjects = subjects
		}
	}
}

// WithRerankInterval sets the periodic drift-correction interval.
func WithRerankInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.rerankInterval = interval
		}
	}
}

// WithStore injects a pre-built store, used by tests.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithGenerator injects a pre-built mark generator, used by tests.
func WithGenerator(g *marks.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.generator = g
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:         "awr.db",
		subjects:       marks.DefaultSubjects(),
		rerankInterval: 5 * time.Minute,
		logger:         nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting exam results service...")

	if s.store == nil {
		store, err := repository.Open(s.dbPath)
		if err != nil {
			return fmt.Errorf("open result store: %w", err)
		}
		s.store = store
		s.logger.Info(ctx, "using sqlite store", logger.String("path", s.dbPath))
	}

	if s.generator == nil {
		s.generator = marks.NewGenerator(marks.WithSubjects(s.subjects))
	}

	s.engine = rerank.NewEngine(s.store)
	s.scheduler = rerank.NewScheduler(s.engine, rerank.WithInterval(s.rerankInterval))
	s.scheduler.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "exam results service started",
		logger.Int("subjects", len(s.subjects)),
		logger.String("rerankInterval", s.rerankInterval.String()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping exam results service...")

	if s.scheduler != nil {
		_ = s.scheduler.Shutdown(ctx)
	}
	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "exam results service stopped")
}

// Submit resolves a submission to a participant record with get-or-create
// semantics keyed by email.
func (s *Service) Submit(ctx context.Context, name, email string) (Submission, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return Submission{}, ErrInvalidInput
	}

	existing, err := s.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return s.resolveExisting(existing, name), nil
	case errors.Is(err, repository.ErrNotFound):
		// First submission for this email; fall through to create.
	default:
		return Submission{}, fmt.Errorf("lookup by email: %w", err)
	}

	sheet := s.generator.Generate()
	rec := model.Participant{
		Name:       name,
		Email:      email,
		Marks:      sheet.Marks,
		TotalMarks: sheet.TotalMarks,
		Percentage: sheet.Percentage,
		CreatedAt:  time.Now().UTC(),
	}

	id, err := s.store.Insert(ctx, rec)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		// Lost the race to a concurrent submitter; the record now exists.
		metrics.RecordDuplicateKeyRace()
		existing, err := s.store.FindByEmail(ctx, email)
		if err != nil {
			return Submission{}, fmt.Errorf("re-read after duplicate insert: %w", err)
		}
		return s.resolveExisting(existing, name), nil
	}
	if err != nil {
		return Submission{}, fmt.Errorf("insert participant: %w", err)
	}
	rec.ID = id
	metrics.RecordSubmissionCreated()

	// Synchronous full pass so the response can carry a rank. A failure
	// here is tolerated; the scheduler heals the drift.
	if _, err := s.engine.Recompute(ctx); err != nil {
		s.logger.Warn(ctx, "post-insert recomputation failed",
			logger.String("id", id),
			logger.Error(err),
		)
	}

	if ranked, err := s.store.FindByID(ctx, id); err == nil {
		rec = ranked
	}
	return Submission{Record: rec, Created: true}, nil
}

// resolveExisting applies the repeat-submission rules against a found record.
func (s *Service) resolveExisting(existing model.Participant, name string) Submission {
	if strings.EqualFold(existing.Name, name) {
		metrics.RecordSubmissionReturning()
		return Submission{Record: existing}
	}
	metrics.RecordSubmissionConflict()
	return Submission{Record: existing, Conflict: true}
}

// ResultByID returns the full record for a store-assigned id.
func (s *Service) ResultByID(ctx context.Context, id string) (model.Participant, error) {
	return s.store.FindByID(ctx, id)
}

// TopLeaders returns the top-n leaderboard projection. It never triggers
// recomputation.
func (s *Service) TopLeaders(ctx context.Context, n int) ([]model.LeaderboardRow, error) {
	metrics.RecordLeaderboardQuery()
	return s.store.TopN(ctx, n)
}

// RecomputeRanks runs one full recomputation pass synchronously.
func (s *Service) RecomputeRanks(ctx context.Context) (rerank.Result, error) {
	s.mu.RLock()
	engine := s.engine
	s.mu.RUnlock()
	if engine == nil {
		return rerank.Result{}, ErrNotStarted
	}
	return engine.Recompute(ctx)
}

// Ping checks connectivity to the persistence layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":  s.started,
		"subjects": len(s.subjects),
	}

	if s.started {
		total := s.store.Count(ctx)
		stats["totalParticipants"] = total
		metrics.UpdateTotalParticipants(total)
	}

	return stats
}

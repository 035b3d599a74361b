// Package rerank implements the rank recomputation engine and its scheduler.
package rerank

import (
	"context"
	"fmt"
	"time"

	"github.com/examworld/awr/internal/adapters/repository"
	"github.com/examworld/awr/internal/domain/ranking"
	"github.com/examworld/awr/pkg/logger"
	"github.com/examworld/awr/pkg/metrics"
)

// Result reports the outcome of one recomputation pass.
type Result struct {
	Assigned int `json:"assigned"`
	Failed   int `json:"failed"`
}

// Engine re-derives the dense rank permutation over the full record set
// and persists it. Passes are best-effort: a failed per-record update is
// counted and skipped, never rolled back, since the next pass heals it.
type Engine struct {
	store  repository.Store
	logger logger.Logger
}

// EngineOption applies a configuration option to the Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets a custom logger for the engine.
func WithEngineLogger(l logger.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a recomputation engine over the given store.
func NewEngine(store repository.Store, opts ...EngineOption) *Engine {
	e := &Engine{store: store}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logger.Get().Named("rerank")
	}
	return e
}

// Recompute runs one full snapshot-sort-and-assign pass.
//
// Concurrent passes are not serialized; the pass that finishes last wins
// for any record both touch, and a record inserted after this pass reads
// its snapshot is picked up by the next pass.
func (e *Engine) Recompute(ctx context.Context) (Result, error) {
	start := time.Now()

	records, err := e.store.AllByScore(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read record snapshot: %w", err)
	}

	var res Result
	for _, a := range ranking.Assign(records) {
		if ctx.Err() != nil {
			return res, fmt.Errorf("recompute interrupted: %w", ctx.Err())
		}
		if err := e.store.UpdateRank(ctx, a.ID, a.Rank); err != nil {
			res.Failed++
			e.logger.Warn(ctx, "rank update failed, will heal on next pass",
				logger.String("id", a.ID),
				logger.Int("rank", a.Rank),
				logger.Error(err),
			)
			continue
		}
		res.Assigned++
	}

	durationMs := float64(time.Since(start).Milliseconds())
	metrics.RecordRerankPass(durationMs)
	if res.Failed > 0 {
		metrics.RecordRerankFailedUpdates(res.Failed)
	}
	metrics.UpdateTotalParticipants(len(records))

	e.logger.Debug(ctx, "recomputation pass finished",
		logger.Int("assigned", res.Assigned),
		logger.Int("failed", res.Failed),
		logger.Float64("durationMs", durationMs),
	)
	return res, nil
}

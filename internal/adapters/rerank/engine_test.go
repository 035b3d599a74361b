package rerank_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/examworld/awr/internal/adapters/repository"
	"github.com/examworld/awr/internal/adapters/rerank"
	"github.com/examworld/awr/internal/domain/model"
	"github.com/examworld/awr/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newStore(t *testing.T) repository.Store {
	t.Helper()
	store, err := repository.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func insert(t *testing.T, store repository.Store, email string, total int, at time.Time) string {
	t.Helper()
	id, err := store.Insert(context.Background(), model.Participant{
		Name:       "P " + email,
		Email:      email,
		Marks:      map[string]model.Mark{"wrestling": {Theory: 50, Practical: 10}},
		TotalMarks: total,
		Percentage: float64(total) / 5.0,
		CreatedAt:  at,
	})
	if err != nil {
		t.Fatalf("insert %s: %v", email, err)
	}
	return id
}

func TestEngine_Recompute(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	engine := rerank.NewEngine(store)

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	idHigh := insert(t, store, "high@x.com", 500, base)
	idLow := insert(t, store, "low@x.com", 300, base.Add(time.Second))
	idMid := insert(t, store, "mid@x.com", 400, base.Add(2*time.Second))

	res, err := engine.Recompute(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Assigned != 3 || res.Failed != 0 {
		t.Errorf("expected 3 assigned and 0 failed, got %+v", res)
	}

	wantRanks := map[string]int{idHigh: 1, idMid: 2, idLow: 3}
	for id, want := range wantRanks {
		rec, err := store.FindByID(ctx, id)
		if err != nil {
			t.Fatalf("find %s: %v", id, err)
		}
		if rec.Rank != want {
			t.Errorf("record %s: expected rank %d, got %d", rec.Email, want, rec.Rank)
		}
	}
}

func TestEngine_RecomputeIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	engine := rerank.NewEngine(store)

	base := time.Now().UTC()
	for i := 0; i < 10; i++ {
		insert(t, store, fmt.Sprintf("p%d@x.com", i), 100+i*37, base.Add(time.Duration(i)*time.Second))
	}

	if _, err := engine.Recompute(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, err := store.AllByScore(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := engine.Recompute(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := store.AllByScore(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range first {
		if first[i].ID != second[i].ID || first[i].Rank != second[i].Rank {
			t.Errorf("pass not idempotent at position %d", i)
		}
	}
}

func TestEngine_DensePermutation(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	engine := rerank.NewEngine(store)

	base := time.Now().UTC()
	const n = 25
	for i := 0; i < n; i++ {
		// Duplicated totals exercise the tie-break.
		insert(t, store, fmt.Sprintf("d%d@x.com", i), 200+(i%7)*50, base.Add(time.Duration(i)*time.Millisecond))
	}

	if _, err := engine.Recompute(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all, err := store.AllByScore(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[int]bool, n)
	for _, rec := range all {
		if rec.Rank < 1 || rec.Rank > n {
			t.Errorf("rank %d out of bounds", rec.Rank)
		}
		if seen[rec.Rank] {
			t.Errorf("duplicate rank %d", rec.Rank)
		}
		seen[rec.Rank] = true
	}
	if len(seen) != n {
		t.Errorf("expected %d distinct ranks, got %d", n, len(seen))
	}
}

func TestScheduler_PeriodicPass(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newStore(t)
	engine := rerank.NewEngine(store)
	id := insert(t, store, "periodic@x.com", 444, time.Now().UTC())

	scheduler := rerank.NewScheduler(engine, rerank.WithInterval(20*time.Millisecond))
	scheduler.Start(ctx)
	defer func() { _ = scheduler.Shutdown(context.Background()) }()

	deadline := time.After(2 * time.Second)
	for {
		rec, err := store.FindByID(ctx, id)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if rec.Rank == 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("scheduler never assigned a rank")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestScheduler_Trigger(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newStore(t)
	engine := rerank.NewEngine(store)
	id := insert(t, store, "triggered@x.com", 321, time.Now().UTC())

	// Long interval so only the trigger can cause a pass.
	scheduler := rerank.NewScheduler(engine, rerank.WithInterval(time.Hour))
	scheduler.Start(ctx)
	defer func() { _ = scheduler.Shutdown(context.Background()) }()

	// Coalesced triggers must not block.
	scheduler.Trigger()
	scheduler.Trigger()
	scheduler.Trigger()

	deadline := time.After(2 * time.Second)
	for {
		rec, err := store.FindByID(ctx, id)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if rec.Rank == 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("trigger never caused a pass")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestScheduler_Shutdown(t *testing.T) {
	store := newStore(t)
	engine := rerank.NewEngine(store)

	scheduler := rerank.NewScheduler(engine, rerank.WithInterval(time.Hour))
	scheduler.Start(context.Background())

	if err := scheduler.Shutdown(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	// Second shutdown is a no-op.
	if err := scheduler.Shutdown(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/examworld/awr/internal/domain/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return store
}

func testParticipant(email string, total int, created time.Time) model.Participant {
	return model.Participant{
		Name:  "Test Person",
		Email: email,
		Marks: map[string]model.Mark{
			"wrestling": {Theory: 40, Practical: 10},
		},
		TotalMarks: total,
		Percentage: float64(total) / 5.0,
		CreatedAt:  created,
	}
}

func TestSQLiteStore_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	rec := testParticipant("a@x.com", 350, time.Now().UTC())
	id, err := store.Insert(ctx, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty assigned id")
	}

	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	byEmail, err := store.FindByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byEmail.ID != id {
		t.Errorf("expected id %q, got %q", id, byEmail.ID)
	}
	if byEmail.TotalMarks != 350 {
		t.Errorf("expected total 350, got %d", byEmail.TotalMarks)
	}
	if byEmail.Rank != 0 {
		t.Errorf("expected unset rank, got %d", byEmail.Rank)
	}
	if got := byEmail.Marks["wrestling"]; got != (model.Mark{Theory: 40, Practical: 10}) {
		t.Errorf("marks did not round-trip, got %+v", got)
	}

	byID, err := store.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byID.Email != "a@x.com" {
		t.Errorf("expected email a@x.com, got %q", byID.Email)
	}
}

func TestSQLiteStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.FindByEmail(ctx, "missing@x.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.FindByID(ctx, "missing-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.UpdateRank(ctx, "missing-id", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	now := time.Now().UTC()
	if _, err := store.Insert(ctx, testParticipant("dup@x.com", 300, now)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := store.Insert(ctx, testParticipant("dup@x.com", 400, now))
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1 after duplicate insert, got %d", count)
	}
}

func TestSQLiteStore_UpdateRank(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rec := testParticipant("rank@x.com", 420, time.Now().UTC())
	id, err := store.Insert(ctx, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.UpdateRank(ctx, id, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Rank != 3 {
		t.Errorf("expected rank 3, got %d", got.Rank)
	}

	// Rank is the only field the update may touch.
	if got.Name != rec.Name || got.Email != rec.Email || got.TotalMarks != rec.TotalMarks {
		t.Errorf("update mutated fields beyond rank: %+v", got)
	}
}

func TestSQLiteStore_AllByScoreOrdering(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	inserts := []struct {
		email string
		total int
		at    time.Time
	}{
		{"low@x.com", 300, base},
		{"high@x.com", 500, base.Add(time.Minute)},
		{"mid@x.com", 400, base.Add(2 * time.Minute)},
		{"tie-late@x.com", 400, base.Add(3 * time.Minute)},
	}
	for _, in := range inserts {
		if _, err := store.Insert(ctx, testParticipant(in.email, in.total, in.at)); err != nil {
			t.Fatalf("insert %s: %v", in.email, err)
		}
	}

	all, err := store.AllByScore(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 records, got %d", len(all))
	}

	wantEmails := []string{"high@x.com", "mid@x.com", "tie-late@x.com", "low@x.com"}
	for i, want := range wantEmails {
		if all[i].Email != want {
			t.Errorf("position %d: expected %s, got %s", i, want, all[i].Email)
		}
	}

	// A second scan over the unchanged set yields the same order.
	again, err := store.AllByScore(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range all {
		if all[i].ID != again[i].ID {
			t.Errorf("scan order not stable at position %d", i)
		}
	}
}

func TestSQLiteStore_TopN(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Now().UTC()
	totals := []int{410, 250, 495, 333, 470}
	for i, total := range totals {
		rec := testParticipant(fmt.Sprintf("p%d@x.com", i), total, base.Add(time.Duration(i)*time.Second))
		if _, err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	top, err := store.TopN(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(top))
	}
	wantTotals := []int{495, 470, 410}
	for i, want := range wantTotals {
		if top[i].TotalMarks != want {
			t.Errorf("row %d: expected total %d, got %d", i, want, top[i].TotalMarks)
		}
	}

	// Asking for more than exists returns everything, still ordered.
	top, err = store.TopN(ctx, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(top) != len(totals) {
		t.Errorf("expected %d rows, got %d", len(totals), len(top))
	}

	if _, err := store.TopN(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestSQLiteStore_Ping(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.Ping(ctx); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

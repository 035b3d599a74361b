// Package repository defines the result store interface and errors.
package repository

import (
	"context"

	"github.com/examworld/awr/internal/domain/model"
)

// Store provides durable keyed access to participant records.
//
// Insert uniqueness on email is the only atomicity guarantee the store
// provides; rank values are only eventually consistent between
// recomputation passes.
type Store interface {
	// FindByEmail returns the record for an email.
	// Returns ErrNotFound if no record exists.
	FindByEmail(ctx context.Context, email string) (model.Participant, error)

	// Insert persists a new record and returns the assigned id.
	// Returns ErrDuplicateEmail if a record with the same email already
	// exists; the store does not retry.
	Insert(ctx context.Context, rec model.Participant) (string, error)

	// FindByID returns the record for a store-assigned id.
	// Returns ErrNotFound if no record exists.
	FindByID(ctx context.Context, id string) (model.Participant, error)

	// AllByScore returns every record ordered by TotalMarks descending,
	// ties broken by creation time then id, so repeated scans over an
	// unchanged data set produce the same order.
	AllByScore(ctx context.Context) ([]model.Participant, error)

	// UpdateRank sets the rank of a single record, leaving all other
	// fields untouched.
	UpdateRank(ctx context.Context, id string, rank int) error

	// TopN returns the top-N leaderboard projection under the same
	// ordering as AllByScore.
	TopN(ctx context.Context, n int) ([]model.LeaderboardRow, error)

	// Count returns the number of participant records.
	Count(ctx context.Context) int

	// Ping checks connectivity to the persistence layer.
	Ping(ctx context.Context) error

	// Close releases the underlying database.
	Close() error
}

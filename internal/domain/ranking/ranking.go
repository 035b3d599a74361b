// Package ranking computes dense All World Rank assignments from a record snapshot.
package ranking

import (
	"sort"

	"github.com/examworld/awr/internal/domain/model"
)

// Assignment pairs a record id with its computed rank.
type Assignment struct {
	ID   string
	Rank int
}

// Assign produces a dense 1..N rank assignment over the given snapshot,
// ordered by TotalMarks descending with ties broken by creation time and
// then id. The input is not mutated; the same snapshot always yields the
// same assignment.
func Assign(records []model.Participant) []Assignment {
	snapshot := make([]model.Participant, len(records))
	copy(snapshot, records)

	sort.SliceStable(snapshot, func(i, j int) bool {
		a, b := snapshot[i], snapshot[j]
		if a.TotalMarks != b.TotalMarks {
			return a.TotalMarks > b.TotalMarks
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	assignments := make([]Assignment, len(snapshot))
	for i, rec := range snapshot {
		assignments[i] = Assignment{ID: rec.ID, Rank: i + 1}
	}
	return assignments
}

// Package model contains domain models passed between layers.
package model

import "time"

// Mark holds the theory and practical marks for a single subject.
// JSON tags match the persisted mark-sheet document shape.
type Mark struct {
	Theory    int `json:"theory"`
	Practical int `json:"practical"`
}

// Total returns the combined theory and practical marks.
func (m Mark) Total() int {
	return m.Theory + m.Practical
}

// Participant represents one exam submission record.
// All fields except Rank are write-once at creation.
type Participant struct {
	ID         string          // store-assigned opaque identifier
	Name       string          // display name as first submitted
	Email      string          // unique natural key
	Marks      map[string]Mark // subject code -> marks, generated once
	TotalMarks int             // derived at creation
	Percentage float64         // derived at creation, 2 decimal places
	Rank       int             // All World Rank; 0 until the first recomputation pass
	CreatedAt  time.Time       // creation timestamp, UTC
}

// LeaderboardRow is the read-only projection served by the leaderboard.
type LeaderboardRow struct {
	Name       string
	TotalMarks int
	Percentage float64
	Rank       int
}

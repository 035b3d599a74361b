package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound       = errors.New("participant not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrInvalidLimit   = errors.New("invalid leaderboard limit")
)

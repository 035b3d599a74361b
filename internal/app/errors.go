package service

import "errors"

// Sentinel kinds for coordinator errors. These allow errors.Is from callers.
var (
	ErrInvalidInput = errors.New("name and email are required")
	ErrNotStarted   = errors.New("service not started")
)

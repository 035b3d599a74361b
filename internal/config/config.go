// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file holding participant records.
	DBPath string `koanf:"db_path"`

	// AdminSecret authorizes POST /api/update-ranks via bearer token.
	AdminSecret string `koanf:"admin_secret"`

	// LeaderboardLimit applies when GET /api/leaderboard omits ?limit.
	LeaderboardLimit int `koanf:"leaderboard_limit"`

	// MaxLeaderboardLimit caps GET /api/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// RerankIntervalSeconds sets the periodic drift-correction cadence.
	RerankIntervalSeconds int `koanf:"rerank_interval_seconds"`

	// Subjects optionally overrides the exam subject list.
	Subjects []string `koanf:"subjects"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and currently
// unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		DBPath:                "awr.db",
		AdminSecret:           "",
		LeaderboardLimit:      10,
		MaxLeaderboardLimit:   100,
		RerankIntervalSeconds: 300,
	}
	return c
}

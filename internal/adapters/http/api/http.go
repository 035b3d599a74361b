// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/examworld/awr/internal/adapters/repository"
	"github.com/examworld/awr/internal/adapters/rerank"
	service "github.com/examworld/awr/internal/app"
	"github.com/examworld/awr/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit resolves a submission with get-or-create semantics.
	Submit(ctx context.Context, name, email string) (service.Submission, error)

	// Read operations expose stored results.
	ResultByID(ctx context.Context, id string) (model.Participant, error)
	TopLeaders(ctx context.Context, n int) ([]model.LeaderboardRow, error)

	// RecomputeRanks runs one full recomputation pass.
	RecomputeRanks(ctx context.Context) (rerank.Result, error)

	// Ping checks connectivity to the persistence layer.
	Ping(ctx context.Context) error
}

// Config carries handler-level settings.
type Config struct {
	// DefaultLeaderboardLimit applies when ?limit is absent.
	DefaultLeaderboardLimit int
	// MaxLeaderboardLimit caps GET /api/leaderboard?limit.
	MaxLeaderboardLimit int
	// AdminSecret authorizes POST /api/update-ranks via bearer token.
	AdminSecret string
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	metricsHandler     *MetricsHandler
	statsHandler       *StatsHandler
	resultsHandler     *ResultsHandler
	leaderboardHandler *LeaderboardHandler
	recomputeHandler   *RecomputeHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, cfg Config) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(deps),
		metricsHandler:     NewMetricsHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		resultsHandler:     NewResultsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, cfg.DefaultLeaderboardLimit, cfg.MaxLeaderboardLimit),
		recomputeHandler:   NewRecomputeHandler(deps, cfg.AdminSecret),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.metricsHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/results", MetricsMiddleware(s.resultsHandler.HandleSubmit, "results"))
	mux.HandleFunc("/api/results/", MetricsMiddleware(s.resultsHandler.HandleGetResult, "result_by_id"))
	mux.HandleFunc("/api/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/api/update-ranks", MetricsMiddleware(s.recomputeHandler.HandleUpdateRanks, "update_ranks"))
}

// recordResponse mirrors the JSON shape of a full participant record.
type recordResponse struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	Email      string                `json:"email"`
	Marks      map[string]model.Mark `json:"marks"`
	TotalMarks int                   `json:"totalMarks"`
	Percentage float64               `json:"percentage"`
	AWR        int                   `json:"awr"`
	CreatedAt  string                `json:"createdAt"`
}

func newRecordResponse(rec model.Participant) recordResponse {
	return recordResponse{
		ID:         rec.ID,
		Name:       rec.Name,
		Email:      rec.Email,
		Marks:      rec.Marks,
		TotalMarks: rec.TotalMarks,
		Percentage: rec.Percentage,
		AWR:        rec.Rank,
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
	}
}

// conflictResponse is the soft-success payload for a same-email,
// different-name submission.
type conflictResponse struct {
	Conflict bool   `json:"conflict"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// leaderboardEntry mirrors the leaderboard projection row.
type leaderboardEntry struct {
	Name       string  `json:"name"`
	TotalMarks int     `json:"totalMarks"`
	Percentage float64 `json:"percentage"`
	AWR        int     `json:"awr"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

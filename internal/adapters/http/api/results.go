// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/examworld/awr/internal/app"
	"github.com/google/uuid"
)

// ResultsHandler handles submission and result-retrieval requests.
type ResultsHandler struct {
	deps Dependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps Dependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// submitRequest mirrors the POST /api/results body.
type submitRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HandleSubmit handles POST /api/results requests.
func (h *ResultsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	sub, err := h.deps.Submit(r.Context(), req.Name, req.Email)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "invalid_input", err)
			return
		}
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", errors.New("could not process submission"))
		return
	}

	// A name conflict is an ordinary outcome, not a transport error.
	if sub.Conflict {
		writeJSON(w, http.StatusOK, conflictResponse{
			Conflict: true,
			ID:       sub.Record.ID,
			Name:     sub.Record.Name,
			Email:    sub.Record.Email,
		})
		return
	}

	writeJSON(w, http.StatusOK, newRecordResponse(sub.Record))
}

// HandleGetResult handles GET /api/results/{id} requests.
func (h *ResultsHandler) HandleGetResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	// Extract path parameter after /api/results/
	id := strings.TrimPrefix(r.URL.Path, "/api/results/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", errors.New("invalid id format"))
		return
	}

	rec, err := h.deps.ResultByID(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", errors.New("could not fetch result"))
		return
	}

	writeJSON(w, http.StatusOK, newRecordResponse(rec))
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"crypto/subtle"
	"net/http"
)

// schedulerSignatureHeader marks a request from the trusted scheduler.
// Its presence authorizes a recomputation pass without the admin secret.
const schedulerSignatureHeader = "X-Scheduler-Signature"

// RecomputeHandler handles administrative rank-recomputation triggers.
type RecomputeHandler struct {
	deps        Dependencies
	adminSecret string
}

// NewRecomputeHandler creates a new recompute handler.
func NewRecomputeHandler(deps Dependencies, adminSecret string) *RecomputeHandler {
	return &RecomputeHandler{deps: deps, adminSecret: adminSecret}
}

// HandleUpdateRanks handles POST /api/update-ranks requests.
// Authorized by `Authorization: Bearer <admin secret>` or by the trusted
// scheduler signature header.
func (h *RecomputeHandler) HandleUpdateRanks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}

	res, err := h.deps.RecomputeRanks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *RecomputeHandler) authorized(r *http.Request) bool {
	if r.Header.Get(schedulerSignatureHeader) != "" {
		return true
	}
	if h.adminSecret == "" {
		return false
	}
	token := r.Header.Get("Authorization")
	expected := "Bearer " + h.adminSecret
	return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
}

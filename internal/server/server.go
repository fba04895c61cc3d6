// Package server exposes the gate manager over HTTP and gRPC.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/omahs/claims-hatter/internal/claims"
	"github.com/omahs/claims-hatter/internal/factory"
	"github.com/omahs/claims-hatter/internal/hats"
	"github.com/omahs/claims-hatter/internal/model"
	"github.com/omahs/claims-hatter/internal/presence"
)

// HatterServer handles the HTTP JSON API for gates and claims.
type HatterServer struct {
	manager  *factory.Manager
	Presence *presence.Tracker
	logger   *slog.Logger
}

// NewHatterServer returns a new HatterServer backed by the given manager.
func NewHatterServer(m *factory.Manager, tracker *presence.Tracker) *HatterServer {
	return &HatterServer{
		manager:  m,
		Presence: tracker,
		logger:   slog.Default(),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response with a stable machine-readable code.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": message, "code": code})
}

// writeGuardError maps domain errors onto HTTP statuses and stable codes.
// Guard refusals are client errors: the request was well-formed but the
// caller does not satisfy the gate.
func writeGuardError(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	switch {
	case errors.Is(err, factory.ErrGateNotFound):
		writeError(w, http.StatusNotFound, "gate_not_found", err.Error())
	case errors.Is(err, hats.ErrHatNotFound):
		writeError(w, http.StatusNotFound, "hat_not_found", err.Error())
	case errors.Is(err, claims.ErrNotHatAdmin):
		writeError(w, http.StatusForbidden, "not_hat_admin", err.Error())
	case errors.Is(err, claims.ErrNotClaimableFor):
		writeError(w, http.StatusConflict, "not_claimable_for", err.Error())
	case errors.Is(err, claims.ErrNotExplicitlyEligible):
		writeError(w, http.StatusUnprocessableEntity, "not_explicitly_eligible", err.Error())
	case errors.Is(err, hats.ErrAlreadyWearer):
		writeError(w, http.StatusConflict, "already_wearer", err.Error())
	case errors.Is(err, hats.ErrNoMintAuthority):
		writeError(w, http.StatusConflict, "no_mint_authority", err.Error())
	case errors.Is(err, factory.ErrHatAlreadyGated):
		writeError(w, http.StatusConflict, "hat_already_gated", err.Error())
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

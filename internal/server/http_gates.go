package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/omahs/claims-hatter/internal/factory"
	"github.com/omahs/claims-hatter/internal/model"
)

// handleCreateGate handles POST /v1/gates.
func (s *HatterServer) handleCreateGate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Hat             model.HatID `json:"hat"`
		OracleURL       string      `json:"oracle_url"`
		ClaimForEnabled bool        `json:"claim_for_enabled"`
		CreatedBy       string      `json:"created_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	gate, err := s.manager.CreateGate(r.Context(), factory.CreateGateRequest{
		Hat:             in.Hat,
		OracleURL:       in.OracleURL,
		ClaimForEnabled: in.ClaimForEnabled,
		Actor:           in.CreatedBy,
	})
	if err != nil {
		writeGuardError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, gate)
}

// handleListGates handles GET /v1/gates.
func (s *HatterServer) handleListGates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.GateFilter{
		Hat:       model.HatID(q.Get("hat")),
		AdminOf:   model.HatID(q.Get("admin_of")),
		CreatedBy: q.Get("created_by"),
		Sort:      q.Get("sort"),
	}

	if v := q.Get("enabled"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.Enabled = &b
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	gates, total, err := s.manager.ListGates(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to list gates")
		return
	}

	// Ensure gates is never null in JSON output.
	if gates == nil {
		gates = []*model.Gate{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"gates": gates,
		"total": total,
	})
}

// handleGetGate handles GET /v1/gates/{id}.
func (s *HatterServer) handleGetGate(w http.ResponseWriter, r *http.Request) {
	gate, err := s.manager.GetGate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeGuardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gate)
}

// handleGateStatus handles GET /v1/gates/{id}/status.
// The derived views are recomputed from live registry state on every call.
func (s *HatterServer) handleGateStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.manager.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		writeGuardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleGateEvents handles GET /v1/gates/{id}/events.
func (s *HatterServer) handleGateEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.manager.Events(r.Context(), r.PathValue("id"))
	if err != nil {
		writeGuardError(w, err)
		return
	}
	if events == nil {
		events = []*model.AuditEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// handleClaim handles POST /v1/gates/{id}/claim.
func (s *HatterServer) handleClaim(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Caller string `json:"caller"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if in.Caller == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "caller is required")
		return
	}

	if err := s.manager.Claim(r.Context(), r.PathValue("id"), in.Caller); err != nil {
		writeGuardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "claimed", "wearer": in.Caller})
}

// handleClaimFor handles POST /v1/gates/{id}/claim-for.
func (s *HatterServer) handleClaimFor(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Caller string `json:"caller"`
		Wearer string `json:"wearer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if in.Caller == "" || in.Wearer == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "caller and wearer are required")
		return
	}

	if err := s.manager.ClaimFor(r.Context(), r.PathValue("id"), in.Caller, in.Wearer); err != nil {
		writeGuardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "claimed", "wearer": in.Wearer})
}

// handleEnable handles POST /v1/gates/{id}/enable.
func (s *HatterServer) handleEnable(w http.ResponseWriter, r *http.Request) {
	s.handleToggle(w, r, true)
}

// handleDisable handles POST /v1/gates/{id}/disable.
func (s *HatterServer) handleDisable(w http.ResponseWriter, r *http.Request) {
	s.handleToggle(w, r, false)
}

func (s *HatterServer) handleToggle(w http.ResponseWriter, r *http.Request, enabled bool) {
	var in struct {
		Caller string `json:"caller"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if in.Caller == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "caller is required")
		return
	}

	id := r.PathValue("id")
	if err := s.manager.SetClaimFor(r.Context(), id, in.Caller, enabled); err != nil {
		writeGuardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"gate_id": id, "claim_for_enabled": enabled})
}

// handleWearerStatus handles GET /v1/gates/{id}/wearers/{wearer}/status.
// This is the same question the registry's standing callback asks during a
// mint, exposed for inspection.
func (s *HatterServer) handleWearerStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.manager.WearerStatus(r.Context(), r.PathValue("id"), r.PathValue("wearer"))
	if err != nil {
		writeGuardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"wearer":   r.PathValue("wearer"),
		"eligible": status.Eligible,
		"standing": status.Standing,
		"explicit": status.Explicit(),
	})
}

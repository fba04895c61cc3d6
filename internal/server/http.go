package server

import "net/http"

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *HatterServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/gates", s.handleCreateGate)
	mux.HandleFunc("GET /v1/gates", s.handleListGates)
	mux.HandleFunc("GET /v1/gates/{id}", s.handleGetGate)
	mux.HandleFunc("GET /v1/gates/{id}/status", s.handleGateStatus)
	mux.HandleFunc("GET /v1/gates/{id}/events", s.handleGateEvents)
	mux.HandleFunc("POST /v1/gates/{id}/claim", s.handleClaim)
	mux.HandleFunc("POST /v1/gates/{id}/claim-for", s.handleClaimFor)
	mux.HandleFunc("POST /v1/gates/{id}/enable", s.handleEnable)
	mux.HandleFunc("POST /v1/gates/{id}/disable", s.handleDisable)
	mux.HandleFunc("GET /v1/gates/{id}/wearers/{wearer}/status", s.handleWearerStatus)
	mux.HandleFunc("GET /v1/activity", s.handleActivity)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *HatterServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/omahs/claims-hatter/internal/presence"
)

// handleActivity handles GET /v1/activity.
// Returns the live claim-activity roster from the presence tracker.
func (s *HatterServer) handleActivity(w http.ResponseWriter, r *http.Request) {
	if s.Presence == nil {
		writeJSON(w, http.StatusOK, map[string]any{"actors": []any{}})
		return
	}

	// Parse optional stale_threshold_secs query param (default: 30 min).
	staleThreshold := 30 * time.Minute
	if v := r.URL.Query().Get("stale_threshold_secs"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			staleThreshold = time.Duration(secs) * time.Second
		}
	}

	entries := s.Presence.Roster(staleThreshold)
	if entries == nil {
		entries = []presence.Entry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"actors": entries})
}

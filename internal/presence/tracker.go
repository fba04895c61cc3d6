// Package presence tracks live claim activity for the activity roster.
//
// The Tracker maintains an in-memory map of recently active accounts,
// updated directly by the gate manager each time a claim or toggle
// attempt is processed. A background reaper goroutine marks idle
// accounts as stale after a configurable threshold.
package presence

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Entry represents a single account's live activity state.
type Entry struct {
	Actor               string    `json:"actor"`
	LastSeen            time.Time `json:"last_seen"`
	FirstSeen           time.Time `json:"first_seen"`
	LastAction          string    `json:"last_action"`           // e.g. "claim", "claim_for", "enable", "disable"
	GateID              string    `json:"gate_id,omitempty"`     // gate of the last attempt
	Hat                 string    `json:"hat,omitempty"`         // hat of the last attempt
	LastOutcome         string    `json:"last_outcome"`          // "ok" or an error code
	IdleSecs            float64   `json:"idle_secs"`             // seconds since last attempt
	AttemptCount        int64     `json:"attempt_count"`         // total attempts seen
	SuccessCount        int64     `json:"success_count"`         // attempts that succeeded
	SessionDurationSecs float64   `json:"session_duration_secs"` // seconds since first attempt
	Reaped              bool      `json:"reaped,omitempty"`      // true if reaper marked stale
	ReapedAt            time.Time `json:"reaped_at,omitempty"`   // when reaped
}

// ClaimEvent is the data the tracker needs from one processed attempt.
type ClaimEvent struct {
	Actor   string // account that made the call
	Action  string // "claim", "claim_for", "enable", "disable", "configure"
	GateID  string
	Hat     string
	Outcome string // "ok" or an error code
	OK      bool
}

// ReaperConfig configures the background stale-account reaper.
type ReaperConfig struct {
	// StaleThreshold is how long an account must be idle before being marked stale.
	// Default: 15 minutes.
	StaleThreshold time.Duration

	// EvictAfter is how long after being reaped before an account is permanently
	// removed from the in-memory map. Prevents unbounded growth from one-shot callers.
	// Default: 30 minutes.
	EvictAfter time.Duration

	// SweepInterval is how often the reaper scans for stale accounts.
	// Default: 60 seconds.
	SweepInterval time.Duration

	// OnStale is called for each account newly marked stale.
	// Called outside the lock — safe to make blocking calls.
	OnStale func(actor string)
}

// Tracker maintains an in-memory roster of recently active accounts.
type Tracker struct {
	mu      sync.RWMutex
	actors  map[string]*actorState
	started time.Time

	reaperStop chan struct{}
	reaperDone chan struct{}
}

type actorState struct {
	firstSeen    time.Time
	lastSeen     time.Time
	lastAction   string
	gateID       string
	hat          string
	lastOutcome  string
	attemptCount int64
	successCount int64
	reaped       bool
	reapedAt     time.Time
}

// New creates a new activity tracker.
func New() *Tracker {
	return &Tracker{
		actors:  make(map[string]*actorState),
		started: time.Now(),
	}
}

// RecordAttempt updates the activity state for an account after an attempt
// has been processed, successful or not.
func (t *Tracker) RecordAttempt(ev ClaimEvent) {
	if ev.Actor == "" {
		return
	}

	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.actors[ev.Actor]
	if !ok {
		state = &actorState{firstSeen: now}
		t.actors[ev.Actor] = state
	}

	// Resurrect reaped accounts that come back to life.
	if state.reaped {
		slog.Info("presence: actor resurrected", "actor", ev.Actor)
		state.reaped = false
		state.reapedAt = time.Time{}
	}

	state.lastSeen = now
	state.lastAction = ev.Action
	state.lastOutcome = ev.Outcome
	state.attemptCount++
	if ev.OK {
		state.successCount++
	}

	if ev.GateID != "" {
		state.gateID = ev.GateID
	}
	if ev.Hat != "" {
		state.hat = ev.Hat
	}
}

// Roster returns a snapshot of all tracked accounts, sorted by most recently
// active. staleThreshold controls how long since the last attempt before an
// account is excluded. Pass 0 to include all accounts ever seen.
func (t *Tracker) Roster(staleThreshold time.Duration) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := time.Now()
	entries := make([]Entry, 0, len(t.actors))

	for actor, state := range t.actors {
		idle := now.Sub(state.lastSeen)
		if staleThreshold > 0 && idle > staleThreshold {
			continue
		}

		firstSeen := state.firstSeen
		if firstSeen.IsZero() {
			firstSeen = t.started
		}
		sessionDur := now.Sub(firstSeen).Seconds()

		entries = append(entries, Entry{
			Actor:               actor,
			LastSeen:            state.lastSeen,
			FirstSeen:           firstSeen,
			LastAction:          state.lastAction,
			GateID:              state.gateID,
			Hat:                 state.hat,
			LastOutcome:         state.lastOutcome,
			IdleSecs:            idle.Seconds(),
			AttemptCount:        state.attemptCount,
			SuccessCount:        state.successCount,
			SessionDurationSecs: sessionDur,
			Reaped:              state.reaped,
			ReapedAt:            state.reapedAt,
		})
	}

	// Sort by last seen (most recent first).
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastSeen.After(entries[j].LastSeen)
	})

	return entries
}

// StartReaper launches a background goroutine that periodically marks idle
// accounts as stale. Call Stop() to shut it down.
func (t *Tracker) StartReaper(cfg *ReaperConfig) {
	if cfg == nil {
		cfg = &ReaperConfig{}
	}
	if cfg.StaleThreshold == 0 {
		cfg.StaleThreshold = 15 * time.Minute
	}
	if cfg.EvictAfter == 0 {
		cfg.EvictAfter = 30 * time.Minute
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 60 * time.Second
	}

	t.reaperStop = make(chan struct{})
	t.reaperDone = make(chan struct{})

	go t.reapLoop(cfg)
	slog.Info("presence: reaper started",
		"stale_threshold", cfg.StaleThreshold,
		"sweep_interval", cfg.SweepInterval)
}

// Stop shuts down the reaper goroutine.
func (t *Tracker) Stop() {
	if t.reaperStop != nil {
		close(t.reaperStop)
		<-t.reaperDone
		t.reaperStop = nil
		t.reaperDone = nil
	}
}

func (t *Tracker) reapLoop(cfg *ReaperConfig) {
	defer close(t.reaperDone)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.reaperStop:
			return
		case <-ticker.C:
			t.sweep(cfg)
		}
	}
}

func (t *Tracker) sweep(cfg *ReaperConfig) {
	now := time.Now()

	var newlyStale []string

	t.mu.Lock()
	for actor, state := range t.actors {
		if state.reaped {
			// Evict accounts reaped for longer than EvictAfter.
			// Low-activity accounts (<10 attempts) are likely one-shot callers: evict faster (5 min).
			evictThreshold := cfg.EvictAfter
			if state.attemptCount < 10 {
				evictThreshold = 5 * time.Minute
			}
			if !state.reapedAt.IsZero() && now.Sub(state.reapedAt) > evictThreshold {
				delete(t.actors, actor)
			}
			continue
		}
		idle := now.Sub(state.lastSeen)
		if idle > cfg.StaleThreshold {
			state.reaped = true
			state.reapedAt = now
			newlyStale = append(newlyStale, actor)
		}
	}
	t.mu.Unlock()

	for _, actor := range newlyStale {
		slog.Info("presence: reaper marked account stale",
			"actor", actor,
			"threshold", cfg.StaleThreshold)
		if cfg.OnStale != nil {
			cfg.OnStale(actor)
		}
	}
}

// Package factory deploys and routes claim-gate instances. The Manager owns
// the in-memory set of live Hatters, persists gate records and flag changes
// through the store, and feeds every gate emission into the audit trail.
package factory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/omahs/claims-hatter/internal/claims"
	"github.com/omahs/claims-hatter/internal/eligibility"
	"github.com/omahs/claims-hatter/internal/events"
	"github.com/omahs/claims-hatter/internal/hats"
	"github.com/omahs/claims-hatter/internal/idgen"
	"github.com/omahs/claims-hatter/internal/model"
	"github.com/omahs/claims-hatter/internal/presence"
	"github.com/omahs/claims-hatter/internal/store"
)

// ErrGateNotFound is returned when no gate with the given ID is loaded.
var ErrGateNotFound = errors.New("gate not found")

// ErrHatAlreadyGated is returned when a gate already manages the hat.
var ErrHatAlreadyGated = errors.New("hat already has a gate")

// Dialer returns a registry client bound to the given account identity.
// The in-memory registry hands out identity-scoped views; an HTTP registry
// returns the same token-authenticated client for every identity.
type Dialer func(identity string) hats.Registry

// StatusBinder registers a gate's standing callback with the registry so
// mints re-check eligibility inside the registry's own commit path.
type StatusBinder interface {
	SetStatusSource(hat model.HatID, fn hats.StatusFunc)
}

// Config carries the Manager's dependencies.
type Config struct {
	Store store.Store
	Dial  Dialer

	// Oracle builds an eligibility oracle from a gate's oracle URL.
	// Nil defaults to the HTTP oracle client; gates with no URL get no oracle.
	Oracle func(url string) eligibility.Oracle

	Publisher events.Publisher  // nil defaults to NoopPublisher
	Binder    StatusBinder      // optional; set when the registry is local
	Presence  *presence.Tracker // optional activity roster
	Identity  string            // account name the factory calls Configure as
	Logger    *slog.Logger
}

// Manager deploys gates and routes claim traffic to them.
type Manager struct {
	store    store.Store
	dial     Dialer
	oracle   func(url string) eligibility.Oracle
	audit    *auditPublisher
	binder   StatusBinder
	presence *presence.Tracker
	identity string
	logger   *slog.Logger

	mu    sync.RWMutex
	gates map[string]*claims.Hatter
}

// New creates a Manager. Call Load before serving traffic so gates persisted
// by earlier runs are live again.
func New(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pub := cfg.Publisher
	if pub == nil {
		pub = &events.NoopPublisher{}
	}
	oracle := cfg.Oracle
	if oracle == nil {
		oracle = func(url string) eligibility.Oracle {
			if url == "" {
				return nil
			}
			return eligibility.NewClient(url)
		}
	}
	return &Manager{
		store:    cfg.Store,
		dial:     cfg.Dial,
		oracle:   oracle,
		audit:    &auditPublisher{store: cfg.Store, next: pub, logger: logger},
		binder:   cfg.Binder,
		presence: cfg.Presence,
		identity: cfg.Identity,
		logger:   logger,
	}
}

// Load hydrates every persisted gate into a live Hatter.
func (m *Manager) Load(ctx context.Context) error {
	gates, _, err := m.store.ListGates(ctx, model.GateFilter{})
	if err != nil {
		return fmt.Errorf("load gates: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gates = make(map[string]*claims.Hatter, len(gates))
	for _, g := range gates {
		m.gates[g.ID] = m.build(g)
	}
	m.logger.Info("factory: gates loaded", "count", len(gates))
	return nil
}

// build constructs a live Hatter from a persisted gate record and binds its
// standing callback to the registry.
func (m *Manager) build(g *model.Gate) *claims.Hatter {
	gateID := g.ID
	h := claims.New(claims.Config{
		GateID:          g.ID,
		Hat:             g.Hat,
		Factory:         g.Factory,
		Self:            g.Self,
		ClaimForEnabled: g.ClaimForEnabled,
		Registry:        m.dial(g.Self),
		Oracle:          m.oracle(g.OracleURL),
		Publisher:       m.audit,
		Logger:          m.logger,
		OnToggle: func(ctx context.Context, enabled bool) error {
			return m.store.SetClaimForEnabled(ctx, gateID, enabled)
		},
	})
	if m.binder != nil {
		m.binder.SetStatusSource(g.Hat, h.WearerStatus)
	}
	return h
}

// CreateGateRequest carries the caller-supplied fields for a new gate.
type CreateGateRequest struct {
	Hat             model.HatID `json:"hat"`
	OracleURL       string      `json:"oracle_url,omitempty"`
	ClaimForEnabled bool        `json:"claim_for_enabled,omitempty"`
	Actor           string      `json:"-"`
}

// CreateGate validates the request, persists the gate, brings up its Hatter,
// and applies the initial toggle through the factory-setup path.
func (m *Manager) CreateGate(ctx context.Context, req CreateGateRequest) (*model.Gate, error) {
	id, err := idgen.Generate()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	gate := &model.Gate{
		ID:        id,
		Hat:       req.Hat,
		Factory:   m.identity,
		Self:      "hatter:" + id,
		OracleURL: req.OracleURL,
		CreatedAt: now,
		CreatedBy: req.Actor,
		UpdatedAt: now,
	}
	if err := model.ValidateGate(gate); err != nil {
		return nil, err
	}

	if existing, err := m.store.GetGateByHat(ctx, req.Hat); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %s managed by %s", ErrHatAlreadyGated, req.Hat, existing.ID)
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check hat: %w", err)
	}

	if err := m.store.CreateGate(ctx, gate); err != nil {
		return nil, fmt.Errorf("create gate: %w", err)
	}

	h := m.build(gate)
	m.mu.Lock()
	if m.gates == nil {
		m.gates = make(map[string]*claims.Hatter)
	}
	m.gates[id] = h
	m.mu.Unlock()

	if err := m.audit.Publish(ctx, events.TopicGateCreated, events.GateCreated{Gate: gate}); err != nil {
		m.logger.Warn("factory: publish gate created", "gate_id", id, "error", err)
	}

	// The initial flag goes through the setup path so it is persisted and
	// announced exactly like any later toggle.
	if req.ClaimForEnabled {
		if err := h.Configure(ctx, m.identity, true); err != nil {
			return nil, fmt.Errorf("apply initial toggle: %w", err)
		}
		gate.ClaimForEnabled = true
	}

	m.logger.Info("factory: gate created",
		"gate_id", id, "hat", gate.Hat, "created_by", req.Actor)
	return gate, nil
}

// Gate returns the live Hatter for a gate ID.
func (m *Manager) Gate(id string) (*claims.Hatter, error) {
	m.mu.RLock()
	h, ok := m.gates[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGateNotFound, id)
	}
	return h, nil
}

// GetGate returns the persisted record for a gate ID.
func (m *Manager) GetGate(ctx context.Context, id string) (*model.Gate, error) {
	g, err := m.store.GetGate(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrGateNotFound, id)
	}
	return g, err
}

// ListGates returns persisted gate records with a total count.
func (m *Manager) ListGates(ctx context.Context, filter model.GateFilter) ([]*model.Gate, int, error) {
	return m.store.ListGates(ctx, filter)
}

// Events returns the audit trail for a gate.
func (m *Manager) Events(ctx context.Context, gateID string) ([]*model.AuditEvent, error) {
	if _, err := m.Gate(gateID); err != nil {
		return nil, err
	}
	return m.store.GetEvents(ctx, gateID)
}

// Claim routes a self-claim to the gate.
func (m *Manager) Claim(ctx context.Context, gateID, caller string) error {
	h, err := m.Gate(gateID)
	if err != nil {
		return err
	}
	err = h.ClaimHat(ctx, caller)
	m.note(caller, "claim", h, err)
	return err
}

// ClaimFor routes a third-party claim to the gate.
func (m *Manager) ClaimFor(ctx context.Context, gateID, caller, wearer string) error {
	h, err := m.Gate(gateID)
	if err != nil {
		return err
	}
	err = h.ClaimHatFor(ctx, caller, wearer)
	m.note(caller, "claim_for", h, err)
	return err
}

// SetClaimFor routes a toggle call to the gate.
func (m *Manager) SetClaimFor(ctx context.Context, gateID, caller string, enabled bool) error {
	h, err := m.Gate(gateID)
	if err != nil {
		return err
	}
	action := "disable"
	if enabled {
		action = "enable"
		err = h.EnableClaimingFor(ctx, caller)
	} else {
		err = h.DisableClaimingFor(ctx, caller)
	}
	m.note(caller, action, h, err)
	return err
}

// Status returns the derived views for a gate.
func (m *Manager) Status(ctx context.Context, gateID string) (model.GateStatus, error) {
	h, err := m.Gate(gateID)
	if err != nil {
		return model.GateStatus{}, err
	}
	return h.Status(ctx)
}

// WearerStatus answers the eligibility question for a gate's hat.
func (m *Manager) WearerStatus(ctx context.Context, gateID, wearer string) (model.WearerStatus, error) {
	h, err := m.Gate(gateID)
	if err != nil {
		return model.WearerStatus{}, err
	}
	return h.WearerStatus(ctx, wearer, h.Hat())
}

func (m *Manager) note(actor, action string, h *claims.Hatter, err error) {
	if m.presence == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = errorCode(err)
	}
	m.presence.RecordAttempt(presence.ClaimEvent{
		Actor:   actor,
		Action:  action,
		GateID:  h.GateID(),
		Hat:     string(h.Hat()),
		Outcome: outcome,
		OK:      err == nil,
	})
}

// errorCode maps guard failures to the stable codes used in the roster and
// the HTTP error envelope.
func errorCode(err error) string {
	switch {
	case errors.Is(err, claims.ErrNotHatAdmin):
		return "not_hat_admin"
	case errors.Is(err, claims.ErrNotExplicitlyEligible):
		return "not_explicitly_eligible"
	case errors.Is(err, claims.ErrNotClaimableFor):
		return "not_claimable_for"
	case errors.Is(err, hats.ErrAlreadyWearer):
		return "already_wearer"
	case errors.Is(err, hats.ErrNoMintAuthority):
		return "no_mint_authority"
	case errors.Is(err, hats.ErrHatNotFound):
		return "hat_not_found"
	default:
		return "error"
	}
}

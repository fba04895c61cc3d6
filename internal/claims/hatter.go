// Package claims implements the claim-gate state machine: the guard
// composition that decides who may pull a hat out of the registry onto an
// eligible head. One Hatter manages exactly one hat.
package claims

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/omahs/claims-hatter/internal/eligibility"
	"github.com/omahs/claims-hatter/internal/events"
	"github.com/omahs/claims-hatter/internal/hats"
	"github.com/omahs/claims-hatter/internal/model"
)

// ToggleFunc persists a claim-for flag change before it takes effect in
// memory. Returning an error aborts the toggle with no state change.
type ToggleFunc func(ctx context.Context, enabled bool) error

// Config carries the immutable construction-time configuration of a Hatter.
type Config struct {
	GateID  string
	Hat     model.HatID
	Factory string // identity that deployed this instance
	Self    string // account the instance occupies in the registry

	// ClaimForEnabled is the initial toggle state (false for new gates,
	// the persisted value for rehydrated ones).
	ClaimForEnabled bool

	Registry  hats.Registry
	Oracle    eligibility.Oracle // nil means no oracle bound: nobody is eligible
	Publisher events.Publisher
	Logger    *slog.Logger

	// OnToggle, when set, is called before each flag change is applied.
	OnToggle ToggleFunc
}

// Hatter is one claim-gate instance. Hat, factory, and self identity are
// fixed for its lifetime; the claim-for toggle is its only mutable state.
// Admin status and eligibility are always read live, never cached.
type Hatter struct {
	gateID  string
	hat     model.HatID
	factory string
	self    string

	registry  hats.Registry
	oracle    eligibility.Oracle
	publisher events.Publisher
	logger    *slog.Logger
	onToggle  ToggleFunc

	mu              sync.Mutex
	claimForEnabled bool
}

// New returns a Hatter for cfg. The registry is required; everything else
// has a working zero behavior.
func New(cfg Config) *Hatter {
	pub := cfg.Publisher
	if pub == nil {
		pub = &events.NoopPublisher{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Hatter{
		gateID:          cfg.GateID,
		hat:             cfg.Hat,
		factory:         cfg.Factory,
		self:            cfg.Self,
		registry:        cfg.Registry,
		oracle:          cfg.Oracle,
		publisher:       pub,
		logger:          logger,
		onToggle:        cfg.OnToggle,
		claimForEnabled: cfg.ClaimForEnabled,
	}
}

// GateID returns the instance's record id.
func (h *Hatter) GateID() string { return h.gateID }

// Hat returns the hat this instance manages.
func (h *Hatter) Hat() model.HatID { return h.hat }

// Factory returns the recorded deployer identity.
func (h *Hatter) Factory() string { return h.factory }

// Self returns the account the instance occupies in the registry.
func (h *Hatter) Self() string { return h.self }

// ClaimForEnabled returns the current toggle state.
func (h *Hatter) ClaimForEnabled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.claimForEnabled
}

// IsAdmin reports whether caller currently wears the hat immediately superior
// to the managed hat. Pure read-through to the registry; a missing hat or a
// top-level hat (no admin position) yields false.
func (h *Hatter) IsAdmin(ctx context.Context, caller string) (bool, error) {
	admin, err := h.registry.AdminOf(ctx, h.hat)
	if err != nil {
		if errors.Is(err, hats.ErrHatNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("resolve admin of %s: %w", h.hat, err)
	}
	if admin == "" {
		return false, nil
	}
	wears, err := h.registry.IsWearerOf(ctx, caller, admin)
	if err != nil {
		return false, fmt.Errorf("check wearer of %s: %w", admin, err)
	}
	return wears, nil
}

// IsAdminOrFactory reports whether caller passes the disjunctive setup gate:
// a live admin, or the one-time immutable factory identity.
func (h *Hatter) IsAdminOrFactory(ctx context.Context, caller string) (bool, error) {
	if caller != "" && caller == h.factory {
		return true, nil
	}
	return h.IsAdmin(ctx, caller)
}

func (h *Hatter) requireAdmin(ctx context.Context, caller string) error {
	ok, err := h.IsAdmin(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotHatAdmin, caller)
	}
	return nil
}

func (h *Hatter) requireAdminOrFactory(ctx context.Context, caller string) error {
	ok, err := h.IsAdminOrFactory(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotHatAdmin, caller)
	}
	return nil
}

// IsExplicitlyEligible reports whether the oracle answers (true, true) for
// wearer, querying fresh on every call. Oracle absence or failure is false.
func (h *Hatter) IsExplicitlyEligible(ctx context.Context, wearer string) bool {
	return eligibility.Explicit(ctx, h.oracle, wearer, h.hat)
}

// WearerStatus is the standing callback the registry invokes while minting.
// It proxies the bound oracle, degrading oracle faults to (false, false)
// rather than failing the registry's call.
func (h *Hatter) WearerStatus(ctx context.Context, wearer string, hat model.HatID) (model.WearerStatus, error) {
	if h.oracle == nil {
		return model.WearerStatus{}, nil
	}
	status, err := h.oracle.WearerStatus(ctx, wearer, hat)
	if err != nil {
		h.logger.Debug("oracle unavailable in standing callback",
			"wearer", wearer, "hat", hat, "error", err)
		return model.WearerStatus{}, nil
	}
	return status, nil
}

// mintTo gates the registry mint behind the eligibility predicate. No local
// state is touched; minting authority and bookkeeping live in the registry.
func (h *Hatter) mintTo(ctx context.Context, caller, wearer string) error {
	if !h.IsExplicitlyEligible(ctx, wearer) {
		return fmt.Errorf("%w: %s", ErrNotExplicitlyEligible, wearer)
	}
	if err := h.registry.Mint(ctx, wearer, h.hat); err != nil {
		// The registry re-checks standing through the callback; a rejection
		// there is the same guard failing on the registry's side of the race.
		if errors.Is(err, hats.ErrNotEligible) {
			return fmt.Errorf("%w: %s", ErrNotExplicitlyEligible, wearer)
		}
		return fmt.Errorf("mint %s to %s: %w", h.hat, wearer, err)
	}

	if err := h.publisher.Publish(ctx, events.TopicClaimSucceeded, events.ClaimSucceeded{
		GateID: h.gateID,
		Hat:    h.hat,
		Wearer: wearer,
		Caller: caller,
	}); err != nil {
		h.logger.Warn("failed to publish claim event", "gate", h.gateID, "wearer", wearer, "error", err)
	}
	return nil
}

// ClaimHat mints the managed hat onto the caller's own head. There is no
// admin gate; anyone explicitly eligible may self-claim.
func (h *Hatter) ClaimHat(ctx context.Context, caller string) error {
	return h.mintTo(ctx, caller, caller)
}

// ClaimHatFor mints the managed hat onto wearer on a third party's initiative.
// The toggle is checked before eligibility so a closed gate answers
// ErrNotClaimableFor regardless of the wearer's status and leaks nothing
// about eligibility.
func (h *Hatter) ClaimHatFor(ctx context.Context, caller, wearer string) error {
	if !h.ClaimForEnabled() {
		return fmt.Errorf("%w: hat %s", ErrNotClaimableFor, h.hat)
	}
	return h.mintTo(ctx, caller, wearer)
}

// EnableClaimingFor turns on third-party claiming. Admin-gated. The changed
// event is emitted on every call, including ones that leave the flag as-is.
func (h *Hatter) EnableClaimingFor(ctx context.Context, caller string) error {
	if err := h.requireAdmin(ctx, caller); err != nil {
		return err
	}
	return h.setClaimFor(ctx, caller, true)
}

// DisableClaimingFor turns off third-party claiming. Admin-gated; emits
// unconditionally, like EnableClaimingFor.
func (h *Hatter) DisableClaimingFor(ctx context.Context, caller string) error {
	if err := h.requireAdmin(ctx, caller); err != nil {
		return err
	}
	return h.setClaimFor(ctx, caller, false)
}

// Configure sets the toggle through the factory-assisted setup gate: accepted
// from a live admin or from the recorded factory identity. Used by the
// factory right after deployment.
func (h *Hatter) Configure(ctx context.Context, caller string, enabled bool) error {
	if err := h.requireAdminOrFactory(ctx, caller); err != nil {
		return err
	}
	return h.setClaimFor(ctx, caller, enabled)
}

func (h *Hatter) setClaimFor(ctx context.Context, actor string, enabled bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.onToggle != nil {
		if err := h.onToggle(ctx, enabled); err != nil {
			return fmt.Errorf("persist claim-for flag: %w", err)
		}
	}
	h.claimForEnabled = enabled

	if err := h.publisher.Publish(ctx, events.TopicClaimingForChanged, events.ClaimingForChanged{
		GateID:   h.gateID,
		Hat:      h.hat,
		NewState: enabled,
		Actor:    actor,
	}); err != nil {
		h.logger.Warn("failed to publish toggle event", "gate", h.gateID, "state", enabled, "error", err)
	}
	return nil
}

// WearsAdmin reports whether the instance itself currently wears the admin
// hat, i.e. whether it could mint at all. Live registry state, no caching.
func (h *Hatter) WearsAdmin(ctx context.Context) (bool, error) {
	return h.IsAdmin(ctx, h.self)
}

// Claimable reports whether a claim could currently succeed for an eligible
// wearer: the hat exists and the instance wears its admin hat.
func (h *Hatter) Claimable(ctx context.Context) (bool, error) {
	wears, err := h.WearsAdmin(ctx)
	if err != nil {
		return false, err
	}
	if !wears {
		return false, nil
	}
	exists, err := h.registry.HatExists(ctx, h.hat)
	if err != nil {
		return false, fmt.Errorf("check hat %s exists: %w", h.hat, err)
	}
	return exists, nil
}

// ClaimableFor reports whether a third-party claim could currently succeed:
// Claimable and the toggle on. The conjunction is computed here, never stored.
func (h *Hatter) ClaimableFor(ctx context.Context) (bool, error) {
	claimable, err := h.Claimable(ctx)
	if err != nil {
		return false, err
	}
	return claimable && h.ClaimForEnabled(), nil
}

// Status assembles all derived views in one pass for the API surface.
func (h *Hatter) Status(ctx context.Context) (model.GateStatus, error) {
	wears, err := h.WearsAdmin(ctx)
	if err != nil {
		return model.GateStatus{}, err
	}
	exists, err := h.registry.HatExists(ctx, h.hat)
	if err != nil {
		return model.GateStatus{}, fmt.Errorf("check hat %s exists: %w", h.hat, err)
	}
	enabled := h.ClaimForEnabled()
	claimable := wears && exists
	return model.GateStatus{
		GateID:          h.gateID,
		Hat:             h.hat,
		WearsAdmin:      wears,
		HatExists:       exists,
		Claimable:       claimable,
		ClaimableFor:    claimable && enabled,
		ClaimForEnabled: enabled,
	}, nil
}

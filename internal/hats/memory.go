package hats

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/omahs/claims-hatter/internal/events"
	"github.com/omahs/claims-hatter/internal/model"
)

// Memory is an in-process registry holding a hat hierarchy and wearer sets.
// It serializes every mutation under one lock, which gives callers the same
// one-operation-at-a-time model a transactional registry provides. Mint
// publishes the transfer-style hats.hat.minted event on success.
//
// Memory itself is not a Registry; call Client to get a view bound to a
// caller identity, since mint authority depends on who is calling.
type Memory struct {
	mu        sync.Mutex
	hats      map[model.HatID]*hatRecord
	status    map[model.HatID]StatusFunc
	publisher events.Publisher
	logger    *slog.Logger
}

type hatRecord struct {
	wearers map[string]bool
}

// NewMemory returns an empty in-memory registry. Events are published to the
// given publisher; pass a NoopPublisher to disable.
func NewMemory(publisher events.Publisher, logger *slog.Logger) *Memory {
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Memory{
		hats:      make(map[model.HatID]*hatRecord),
		status:    make(map[model.HatID]StatusFunc),
		publisher: publisher,
		logger:    logger,
	}
}

// CreateHat adds a hat to the hierarchy. Non-top-level hats require their
// admin hat to exist first.
func (m *Memory) CreateHat(hat model.HatID) error {
	if !hat.IsValid() {
		return fmt.Errorf("invalid hat id %q", hat)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hats[hat]; ok {
		return fmt.Errorf("hat %s already exists", hat)
	}
	if admin := hat.Admin(); admin != "" {
		if _, ok := m.hats[admin]; !ok {
			return fmt.Errorf("admin hat %s of %s: %w", admin, hat, ErrHatNotFound)
		}
	}
	m.hats[hat] = &hatRecord{wearers: make(map[string]bool)}
	return nil
}

// Grant puts hat directly on account, bypassing eligibility. This models
// registry-level operations outside the hatter's control (admin transfers,
// top-hat assignment in tests and seeds).
func (m *Memory) Grant(account string, hat model.HatID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.hats[hat]
	if !ok {
		return fmt.Errorf("grant %s: %w", hat, ErrHatNotFound)
	}
	rec.wearers[account] = true
	return nil
}

// Revoke takes hat off account (transfer-away / renounce). Revoking a hat the
// account does not wear is a no-op.
func (m *Memory) Revoke(account string, hat model.HatID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.hats[hat]
	if !ok {
		return fmt.Errorf("revoke %s: %w", hat, ErrHatNotFound)
	}
	delete(rec.wearers, account)
	return nil
}

// SetStatusSource registers the standing-callback hook for a hat. The hook is
// invoked synchronously during Mint; a nil hook removes the binding.
func (m *Memory) SetStatusSource(hat model.HatID, fn StatusFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fn == nil {
		delete(m.status, hat)
		return
	}
	m.status[hat] = fn
}

// Wearers returns the sorted wearer list for a hat. Intended for seeds and
// tests; the Registry interface does not expose enumeration.
func (m *Memory) Wearers(hat model.HatID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.hats[hat]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(rec.wearers))
	for w := range rec.wearers {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Client returns a Registry view bound to the given caller identity. Mint
// authority is checked against that identity.
func (m *Memory) Client(identity string) Registry {
	return &memoryClient{m: m, identity: identity}
}

type memoryClient struct {
	m        *Memory
	identity string
}

var _ Registry = (*memoryClient)(nil)

func (c *memoryClient) IsWearerOf(ctx context.Context, account string, hat model.HatID) (bool, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	rec, ok := c.m.hats[hat]
	if !ok {
		return false, nil
	}
	return rec.wearers[account], nil
}

func (c *memoryClient) AdminOf(ctx context.Context, hat model.HatID) (model.HatID, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	if _, ok := c.m.hats[hat]; !ok {
		return "", fmt.Errorf("admin of %s: %w", hat, ErrHatNotFound)
	}
	return hat.Admin(), nil
}

func (c *memoryClient) HatExists(ctx context.Context, hat model.HatID) (bool, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	_, ok := c.m.hats[hat]
	return ok, nil
}

// Mint grants hat to wearer on behalf of the bound identity. The authority
// check, standing re-check, and wearer-set write all run under the registry
// lock so no other operation observes intermediate state.
func (c *memoryClient) Mint(ctx context.Context, wearer string, hat model.HatID) error {
	c.m.mu.Lock()
	rec, ok := c.m.hats[hat]
	if !ok {
		c.m.mu.Unlock()
		return fmt.Errorf("mint %s: %w", hat, ErrHatNotFound)
	}
	if rec.wearers[wearer] {
		c.m.mu.Unlock()
		return fmt.Errorf("mint %s to %s: %w", hat, wearer, ErrAlreadyWearer)
	}
	admin := hat.Admin()
	adminRec, ok := c.m.hats[admin]
	if !ok || !adminRec.wearers[c.identity] {
		c.m.mu.Unlock()
		return fmt.Errorf("mint %s as %s: %w", hat, c.identity, ErrNoMintAuthority)
	}
	statusFn := c.m.status[hat]
	c.m.mu.Unlock()

	// The standing hook calls back out of the registry (ultimately into the
	// oracle), so it runs outside the lock.
	if statusFn != nil {
		status, err := statusFn(ctx, wearer, hat)
		if err != nil {
			return fmt.Errorf("mint %s to %s: standing hook: %w", hat, wearer, err)
		}
		if !status.Explicit() {
			return fmt.Errorf("mint %s to %s: %w", hat, wearer, ErrNotEligible)
		}
	}

	c.m.mu.Lock()
	// Re-check under the lock; the hook ran unlocked.
	if rec.wearers[wearer] {
		c.m.mu.Unlock()
		return fmt.Errorf("mint %s to %s: %w", hat, wearer, ErrAlreadyWearer)
	}
	rec.wearers[wearer] = true
	c.m.mu.Unlock()

	if err := c.m.publisher.Publish(ctx, events.TopicHatMinted, events.HatMinted{
		Hat:    hat,
		To:     wearer,
		Amount: 1,
	}); err != nil {
		c.m.logger.Warn("failed to publish mint event", "hat", hat, "wearer", wearer, "error", err)
	}
	return nil
}

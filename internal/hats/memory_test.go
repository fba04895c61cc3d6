package hats

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/omahs/claims-hatter/internal/events"
	"github.com/omahs/claims-hatter/internal/model"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	topics []string
	events []any
}

func (p *capturePublisher) Publish(_ context.Context, topic string, event any) error {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func newTestRegistry(t *testing.T) (*Memory, *capturePublisher) {
	t.Helper()
	pub := &capturePublisher{}
	m := NewMemory(pub, nil)
	for _, hat := range []model.HatID{"1", "1.2", "1.2.3"} {
		if err := m.CreateHat(hat); err != nil {
			t.Fatalf("CreateHat(%s): %v", hat, err)
		}
	}
	return m, pub
}

func TestMemoryCreateHatRequiresAdmin(t *testing.T) {
	m := NewMemory(nil, nil)
	if err := m.CreateHat("1.2"); !errors.Is(err, ErrHatNotFound) {
		t.Errorf("CreateHat(1.2) without admin = %v, want ErrHatNotFound", err)
	}
	if err := m.CreateHat("1"); err != nil {
		t.Fatalf("CreateHat(1): %v", err)
	}
	if err := m.CreateHat("1"); err == nil {
		t.Error("duplicate CreateHat(1) should fail")
	}
	if err := m.CreateHat("bad id"); err == nil {
		t.Error("CreateHat with invalid id should fail")
	}
}

func TestMemoryGrantRevoke(t *testing.T) {
	m, _ := newTestRegistry(t)
	ctx := context.Background()
	reg := m.Client("observer")

	wears, err := reg.IsWearerOf(ctx, "alice", "1.2")
	if err != nil || wears {
		t.Fatalf("IsWearerOf before grant = %v, %v", wears, err)
	}

	if err := m.Grant("alice", "1.2"); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	wears, err = reg.IsWearerOf(ctx, "alice", "1.2")
	if err != nil || !wears {
		t.Fatalf("IsWearerOf after grant = %v, %v", wears, err)
	}

	if err := m.Revoke("alice", "1.2"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	wears, err = reg.IsWearerOf(ctx, "alice", "1.2")
	if err != nil || wears {
		t.Fatalf("IsWearerOf after revoke = %v, %v", wears, err)
	}

	if err := m.Grant("alice", "9.9"); !errors.Is(err, ErrHatNotFound) {
		t.Errorf("Grant to missing hat = %v, want ErrHatNotFound", err)
	}
}

func TestMemoryAdminOf(t *testing.T) {
	m, _ := newTestRegistry(t)
	ctx := context.Background()
	reg := m.Client("observer")

	admin, err := reg.AdminOf(ctx, "1.2.3")
	if err != nil || admin != "1.2" {
		t.Fatalf("AdminOf(1.2.3) = %q, %v", admin, err)
	}
	admin, err = reg.AdminOf(ctx, "1")
	if err != nil || admin != "" {
		t.Fatalf("AdminOf(1) = %q, %v, want empty (top-level)", admin, err)
	}
	if _, err := reg.AdminOf(ctx, "7"); !errors.Is(err, ErrHatNotFound) {
		t.Errorf("AdminOf(missing) = %v, want ErrHatNotFound", err)
	}
}

func TestMemoryMintAuthority(t *testing.T) {
	m, _ := newTestRegistry(t)
	ctx := context.Background()

	// "minter" does not wear "1.2" (the admin of 1.2.3) yet.
	if err := m.Client("minter").Mint(ctx, "alice", "1.2.3"); !errors.Is(err, ErrNoMintAuthority) {
		t.Fatalf("Mint without authority = %v, want ErrNoMintAuthority", err)
	}

	if err := m.Grant("minter", "1.2"); err != nil {
		t.Fatal(err)
	}
	if err := m.Client("minter").Mint(ctx, "alice", "1.2.3"); err != nil {
		t.Fatalf("Mint with authority: %v", err)
	}

	wears, _ := m.Client("minter").IsWearerOf(ctx, "alice", "1.2.3")
	if !wears {
		t.Error("alice should wear 1.2.3 after mint")
	}

	// Double mint is rejected.
	if err := m.Client("minter").Mint(ctx, "alice", "1.2.3"); !errors.Is(err, ErrAlreadyWearer) {
		t.Errorf("double mint = %v, want ErrAlreadyWearer", err)
	}

	// Missing hat.
	if err := m.Client("minter").Mint(ctx, "alice", "4.1"); !errors.Is(err, ErrHatNotFound) {
		t.Errorf("mint missing hat = %v, want ErrHatNotFound", err)
	}
}

func TestMemoryMintInvokesStandingHook(t *testing.T) {
	m, _ := newTestRegistry(t)
	ctx := context.Background()
	if err := m.Grant("minter", "1.2"); err != nil {
		t.Fatal(err)
	}

	var hookCalls int
	m.SetStatusSource("1.2.3", func(_ context.Context, wearer string, hat model.HatID) (model.WearerStatus, error) {
		hookCalls++
		if wearer != "bob" || hat != "1.2.3" {
			t.Errorf("hook called with (%s, %s)", wearer, hat)
		}
		return model.WearerStatus{Eligible: true, Standing: false}, nil
	})

	if err := m.Client("minter").Mint(ctx, "bob", "1.2.3"); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("mint with bad standing = %v, want ErrNotEligible", err)
	}
	if hookCalls != 1 {
		t.Fatalf("hook calls = %d, want 1", hookCalls)
	}
	if wears, _ := m.Client("minter").IsWearerOf(ctx, "bob", "1.2.3"); wears {
		t.Error("rejected mint must not change wearer state")
	}

	m.SetStatusSource("1.2.3", func(_ context.Context, _ string, _ model.HatID) (model.WearerStatus, error) {
		return model.WearerStatus{Eligible: true, Standing: true}, nil
	})
	if err := m.Client("minter").Mint(ctx, "bob", "1.2.3"); err != nil {
		t.Fatalf("mint with good standing: %v", err)
	}
}

func TestMemoryMintPublishesTransferEvent(t *testing.T) {
	m, pub := newTestRegistry(t)
	ctx := context.Background()
	if err := m.Grant("minter", "1.2"); err != nil {
		t.Fatal(err)
	}
	if err := m.Client("minter").Mint(ctx, "carol", "1.2.3"); err != nil {
		t.Fatal(err)
	}

	if len(pub.topics) != 1 || pub.topics[0] != events.TopicHatMinted {
		t.Fatalf("published topics = %v, want [%s]", pub.topics, events.TopicHatMinted)
	}
	minted, ok := pub.events[0].(events.HatMinted)
	if !ok {
		t.Fatalf("event type = %T", pub.events[0])
	}
	if minted.From != "" || minted.To != "carol" || minted.Hat != "1.2.3" || minted.Amount != 1 {
		t.Errorf("HatMinted = %+v, want from=\"\" to=carol hat=1.2.3 amount=1", minted)
	}
}

func TestSeedApply(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hats.toml")
	seed := `
[[hats]]
id = "1.2"
wearers = ["deputy"]

[[hats]]
id = "1"
wearers = ["org-owner"]

[[hats]]
id = "1.2.3"
`
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}

	// Entries are deliberately out of order; Apply sorts shallowest-first.
	m := NewMemory(nil, nil)
	if err := s.Apply(m); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	ctx := context.Background()
	reg := m.Client("observer")
	for _, tc := range []struct {
		account string
		hat     model.HatID
	}{
		{"org-owner", "1"},
		{"deputy", "1.2"},
	} {
		wears, err := reg.IsWearerOf(ctx, tc.account, tc.hat)
		if err != nil || !wears {
			t.Errorf("IsWearerOf(%s, %s) = %v, %v", tc.account, tc.hat, wears, err)
		}
	}
	if exists, _ := reg.HatExists(ctx, "1.2.3"); !exists {
		t.Error("seeded hat 1.2.3 should exist")
	}
}

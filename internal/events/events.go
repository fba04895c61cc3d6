package events

import (
	"context"

	"github.com/omahs/claims-hatter/internal/model"
)

// Event topic constants
const (
	// Gate lifecycle and toggle events (emitted by the hatter).
	TopicGateCreated        = "hatter.gate.created"
	TopicClaimingForChanged = "hatter.gate.claiming_for_changed"
	TopicClaimSucceeded     = "hatter.claim.succeeded"

	// Registry transfer-style events (emitted by the in-memory registry on
	// successful mint; a live registry publishes the same shape).
	TopicHatMinted = "hats.hat.minted"

	// Wildcard for all registry hat events, consumed by the watch handler.
	TopicHatAll = "hats.hat.>"
)

// Event types

type GateCreated struct {
	Gate *model.Gate `json:"gate"`
}

// ClaimingForChanged is emitted on every toggle call, including idempotent
// ones that leave the flag unchanged.
type ClaimingForChanged struct {
	GateID   string      `json:"gate_id"`
	Hat      model.HatID `json:"hat"`
	NewState bool        `json:"new_state"`
	Actor    string      `json:"actor,omitempty"`
}

type ClaimSucceeded struct {
	GateID string      `json:"gate_id"`
	Hat    model.HatID `json:"hat"`
	Wearer string      `json:"wearer"`
	Caller string      `json:"caller"`
}

// HatMinted is the transfer-style notification for a successful mint:
// from is empty (minted out of nothing), amount is always 1.
type HatMinted struct {
	Hat    model.HatID `json:"hat"`
	From   string      `json:"from,omitempty"`
	To     string      `json:"to"`
	Amount int         `json:"amount"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

package store

import (
	"context"

	"github.com/omahs/claims-hatter/internal/model"
)

// Store defines the persistence interface for claim gates.
type Store interface {
	// Gates
	CreateGate(ctx context.Context, gate *model.Gate) error
	GetGate(ctx context.Context, id string) (*model.Gate, error)
	GetGateByHat(ctx context.Context, hat model.HatID) (*model.Gate, error)
	ListGates(ctx context.Context, filter model.GateFilter) ([]*model.Gate, int, error) // returns gates, total count, error
	SetClaimForEnabled(ctx context.Context, id string, enabled bool) error
	DeleteGate(ctx context.Context, id string) error

	// Audit trail
	RecordEvent(ctx context.Context, event *model.AuditEvent) error
	GetEvents(ctx context.Context, gateID string) ([]*model.AuditEvent, error)
	ListEvents(ctx context.Context, afterID int64, limit int) ([]*model.AuditEvent, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}

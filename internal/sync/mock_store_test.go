package sync

import (
	"context"
	"database/sql"
	"sort"

	"github.com/omahs/claims-hatter/internal/model"
	"github.com/omahs/claims-hatter/internal/store"
)

// mockStore is a minimal in-memory store for sync tests.
type mockStore struct {
	gates  map[string]*model.Gate
	events []*model.AuditEvent
	nextID int64
}

func newMockStore() *mockStore {
	return &mockStore{
		gates: make(map[string]*model.Gate),
	}
}

func (m *mockStore) CreateGate(_ context.Context, gate *model.Gate) error {
	m.gates[gate.ID] = gate
	return nil
}

func (m *mockStore) GetGate(_ context.Context, id string) (*model.Gate, error) {
	g, ok := m.gates[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return g, nil
}

func (m *mockStore) GetGateByHat(_ context.Context, hat model.HatID) (*model.Gate, error) {
	for _, g := range m.gates {
		if g.Hat == hat {
			return g, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListGates(_ context.Context, _ model.GateFilter) ([]*model.Gate, int, error) {
	var result []*model.Gate
	for _, g := range m.gates {
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, len(result), nil
}

func (m *mockStore) SetClaimForEnabled(_ context.Context, id string, enabled bool) error {
	g, ok := m.gates[id]
	if !ok {
		return sql.ErrNoRows
	}
	g.ClaimForEnabled = enabled
	return nil
}

func (m *mockStore) DeleteGate(_ context.Context, id string) error {
	delete(m.gates, id)
	return nil
}

func (m *mockStore) RecordEvent(_ context.Context, event *model.AuditEvent) error {
	m.nextID++
	event.ID = m.nextID
	m.events = append(m.events, event)
	return nil
}

func (m *mockStore) GetEvents(_ context.Context, gateID string) ([]*model.AuditEvent, error) {
	var result []*model.AuditEvent
	for _, e := range m.events {
		if e.GateID == gateID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockStore) ListEvents(_ context.Context, afterID int64, limit int) ([]*model.AuditEvent, error) {
	var result []*model.AuditEvent
	for _, e := range m.events {
		if e.ID > afterID {
			result = append(result, e)
		}
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error {
	return nil
}

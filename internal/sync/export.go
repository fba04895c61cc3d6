package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/omahs/claims-hatter/internal/model"
	"github.com/omahs/claims-hatter/internal/store"
)

// eventPageSize is how many audit events are fetched per store round-trip.
const eventPageSize = 500

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version    string    `json:"version"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	GateCount  int       `json:"gate_count"`
	EventCount int       `json:"event_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ExportJSONL writes all gates and their audit trail from the store as JSONL
// to w. Gates are sorted by ID; events follow in insertion order.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	// Fetch all gates (no filter, no limit).
	gates, _, err := s.ListGates(ctx, model.GateFilter{Sort: "created_at"})
	if err != nil {
		return fmt.Errorf("list gates: %w", err)
	}

	sort.Slice(gates, func(i, j int) bool {
		return gates[i].ID < gates[j].ID
	})

	// Page through the full audit trail.
	var events []*model.AuditEvent
	var after int64
	for {
		page, err := s.ListEvents(ctx, after, eventPageSize)
		if err != nil {
			return fmt.Errorf("list events after %d: %w", after, err)
		}
		events = append(events, page...)
		if len(page) < eventPageSize {
			break
		}
		after = page[len(page)-1].ID
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:    "1",
		Type:       "header",
		Timestamp:  time.Now().UTC(),
		GateCount:  len(gates),
		EventCount: len(events),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, g := range gates {
		if err := enc.Encode(record{Type: "gate", Data: g}); err != nil {
			return fmt.Errorf("encode gate %s: %w", g.ID, err)
		}
	}

	for _, e := range events {
		if err := enc.Encode(record{Type: "event", Data: e}); err != nil {
			return fmt.Errorf("encode event %d: %w", e.ID, err)
		}
	}

	return nil
}

package factory

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/omahs/claims-hatter/internal/events"
	"github.com/omahs/claims-hatter/internal/model"
	"github.com/omahs/claims-hatter/internal/store"
)

// auditPublisher records every gate emission in the audit trail before
// forwarding it to the configured publisher. A failed audit write is logged,
// not surfaced: losing a trail row must not fail the claim that caused it.
type auditPublisher struct {
	store  store.Store
	next   events.Publisher
	logger *slog.Logger
}

func (p *auditPublisher) Publish(ctx context.Context, topic string, event any) error {
	gateID, actor := auditFields(event)
	if gateID != "" {
		payload, err := json.Marshal(event)
		if err != nil {
			p.logger.Warn("audit: marshal event", "topic", topic, "error", err)
		} else if err := p.store.RecordEvent(ctx, &model.AuditEvent{
			Topic:   topic,
			GateID:  gateID,
			Actor:   actor,
			Payload: payload,
		}); err != nil {
			p.logger.Warn("audit: record event", "topic", topic, "gate_id", gateID, "error", err)
		}
	}
	return p.next.Publish(ctx, topic, event)
}

func (p *auditPublisher) Close() error {
	return p.next.Close()
}

// auditFields extracts the gate and acting account from a known event payload.
// Unknown payloads are forwarded without an audit row.
func auditFields(event any) (gateID, actor string) {
	switch e := event.(type) {
	case events.GateCreated:
		return e.Gate.ID, e.Gate.CreatedBy
	case events.ClaimingForChanged:
		return e.GateID, e.Actor
	case events.ClaimSucceeded:
		return e.GateID, e.Caller
	default:
		return "", ""
	}
}

package model

import (
	"encoding/json"
	"time"
)

// AuditEvent is a persisted event record, mirroring what is published to NATS.
type AuditEvent struct {
	ID        int64           `json:"id"`
	Topic     string          `json:"topic"`
	GateID    string          `json:"gate_id"`
	Actor     string          `json:"actor,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

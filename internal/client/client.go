// Package client provides a transport-agnostic interface for the hatter
// service and an HTTP/JSON implementation that talks to the REST API.
package client

import (
	"context"

	"github.com/omahs/claims-hatter/internal/model"
	"github.com/omahs/claims-hatter/internal/presence"
)

// HatterClient is the interface all CLI commands use to communicate with the
// hatter server. It is implemented by HTTPClient (default) and can be backed
// by any transport.
type HatterClient interface {
	// Gates
	CreateGate(ctx context.Context, req *CreateGateRequest) (*model.Gate, error)
	GetGate(ctx context.Context, id string) (*model.Gate, error)
	ListGates(ctx context.Context, req *ListGatesRequest) (*ListGatesResponse, error)
	GateStatus(ctx context.Context, id string) (*model.GateStatus, error)
	GateEvents(ctx context.Context, id string) ([]*model.AuditEvent, error)

	// Claims and toggles
	Claim(ctx context.Context, gateID, caller string) error
	ClaimFor(ctx context.Context, gateID, caller, wearer string) error
	SetClaimFor(ctx context.Context, gateID, caller string, enabled bool) error

	// Eligibility
	WearerStatus(ctx context.Context, gateID, wearer string) (*WearerStatusResponse, error)

	// Activity roster
	Activity(ctx context.Context, staleThresholdSecs int) ([]presence.Entry, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// CreateGateRequest is the payload for CreateGate.
type CreateGateRequest struct {
	Hat             model.HatID `json:"hat"`
	OracleURL       string      `json:"oracle_url,omitempty"`
	ClaimForEnabled bool        `json:"claim_for_enabled,omitempty"`
	CreatedBy       string      `json:"created_by,omitempty"`
}

// ListGatesRequest carries the filters for ListGates.
type ListGatesRequest struct {
	Hat       string
	AdminOf   string
	Enabled   *bool
	CreatedBy string
	Limit     int
	Offset    int
	Sort      string
}

// ListGatesResponse is the paged result of ListGates.
type ListGatesResponse struct {
	Gates []*model.Gate `json:"gates"`
	Total int           `json:"total"`
}

// WearerStatusResponse is the oracle's answer for one wearer and hat.
type WearerStatusResponse struct {
	Wearer   string `json:"wearer"`
	Eligible bool   `json:"eligible"`
	Standing bool   `json:"standing"`
	Explicit bool   `json:"explicit"`
}

package model

import "time"

// Gate is the persisted record of one claim-gate instance. Each gate manages
// exactly one hat; Hat, Factory, and Self are fixed at creation and never
// updated afterwards. Only ClaimForEnabled changes over the gate's lifetime.
type Gate struct {
	ID              string    `json:"id"`
	Hat             HatID     `json:"hat"`
	Factory         string    `json:"factory"`
	Self            string    `json:"self"` // account the instance occupies in the registry
	OracleURL       string    `json:"oracle_url,omitempty"`
	ClaimForEnabled bool      `json:"claim_for_enabled"`
	CreatedAt       time.Time `json:"created_at"`
	CreatedBy       string    `json:"created_by,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// GateFilter selects gates for list queries. Zero-value fields are ignored.
type GateFilter struct {
	Hat       HatID  // exact hat match
	AdminOf   HatID  // gates whose hat sits anywhere under this hat
	Enabled   *bool  // filter on the claim-for flag
	CreatedBy string // exact creator match
	Limit     int
	Offset    int
	Sort      string // column name, "-" prefix for descending
}

// GateStatus is the set of derived views for a gate, recomputed from live
// registry and flag state on every call.
type GateStatus struct {
	GateID          string `json:"gate_id"`
	Hat             HatID  `json:"hat"`
	WearsAdmin      bool   `json:"wears_admin"`
	HatExists       bool   `json:"hat_exists"`
	Claimable       bool   `json:"claimable"`
	ClaimableFor    bool   `json:"claimable_for"`
	ClaimForEnabled bool   `json:"claim_for_enabled"`
}

// Package hats abstracts the external permission-token registry. The claim
// gate only ever touches the registry through the narrow Registry interface;
// Client talks to a live registry service and Memory is a deterministic
// in-process implementation for tests and local development.
package hats

import (
	"context"
	"errors"

	"github.com/omahs/claims-hatter/internal/model"
)

// Registry is the hatter's view of the permission-token ledger. All reads are
// live; callers must not cache results, since wearer sets and the hierarchy
// change out-of-band.
type Registry interface {
	// IsWearerOf reports whether account currently wears hat.
	IsWearerOf(ctx context.Context, account string, hat model.HatID) (bool, error)

	// AdminOf returns the hat immediately superior to hat in the hierarchy.
	AdminOf(ctx context.Context, hat model.HatID) (model.HatID, error)

	// HatExists reports whether hat has been created in the registry.
	HatExists(ctx context.Context, hat model.HatID) (bool, error)

	// Mint grants hat to wearer. The registry enforces mint authority (the
	// calling identity must wear the admin hat), rejects double-wearing, and
	// re-checks the wearer's standing through its registered status hook
	// before committing.
	Mint(ctx context.Context, wearer string, hat model.HatID) error
}

// Registry error kinds. Adapters map transport-level failures onto these so
// the gate logic can use errors.Is regardless of which implementation backs it.
var (
	ErrHatNotFound     = errors.New("hat does not exist in the registry")
	ErrAlreadyWearer   = errors.New("account already wears the hat")
	ErrNoMintAuthority = errors.New("caller does not wear the admin hat")
	ErrNotEligible     = errors.New("registry standing check rejected the wearer")
)

// StatusFunc is the standing-callback hook the registry invokes synchronously
// while minting. It matches the eligibility oracle signature.
type StatusFunc func(ctx context.Context, wearer string, hat model.HatID) (model.WearerStatus, error)

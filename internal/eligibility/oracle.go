// Package eligibility abstracts the external decision module that says
// whether an account may hold a hat and whether it is in good standing.
package eligibility

import (
	"context"
	"log/slog"

	"github.com/omahs/claims-hatter/internal/model"
)

// Oracle answers (eligible, standing) queries for a (wearer, hat) pair.
type Oracle interface {
	WearerStatus(ctx context.Context, wearer string, hat model.HatID) (model.WearerStatus, error)
}

// Explicit is the guard predicate shared by the mint path and the claimable
// views: true iff the oracle answers (eligible, standing) = (true, true).
// An absent oracle or any oracle failure degrades to false rather than
// propagating a fault; eligibility is advisory input to a guard, and an
// oracle outage must not freeze the gate's other operations.
func Explicit(ctx context.Context, oracle Oracle, wearer string, hat model.HatID) bool {
	if oracle == nil {
		return false
	}
	status, err := oracle.WearerStatus(ctx, wearer, hat)
	if err != nil {
		slog.Debug("eligibility oracle unavailable, treating as not eligible",
			"wearer", wearer, "hat", hat, "error", err)
		return false
	}
	return status.Explicit()
}

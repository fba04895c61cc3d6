package claims

import "errors"

// Guard failures. Every guard is checked before any mutation, so a returned
// error means neither the gate's flag nor registry state changed.
var (
	// ErrNotHatAdmin: caller wears neither the admin hat nor, where the
	// factory is accepted, matches the recorded factory identity.
	ErrNotHatAdmin = errors.New("caller is not an admin of the hat")

	// ErrNotExplicitlyEligible: the eligibility oracle denied the wearer,
	// returned bad standing, errored, or is unset.
	ErrNotExplicitlyEligible = errors.New("wearer is not explicitly eligible to claim the hat")

	// ErrNotClaimableFor: a third-party claim was attempted while the
	// claim-for toggle is off.
	ErrNotClaimableFor = errors.New("claiming on behalf of another wearer is not enabled")
)

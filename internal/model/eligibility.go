package model

// WearerStatus is the ephemeral pair returned by an eligibility oracle for a
// (wearer, hat) query. It is never persisted; standing can change between
// queries, so every consumer re-queries.
type WearerStatus struct {
	Eligible bool `json:"eligible"`
	Standing bool `json:"standing"`
}

// Explicit reports whether the pair grants an explicit claim right:
// both eligible and in good standing.
func (s WearerStatus) Explicit() bool {
	return s.Eligible && s.Standing
}

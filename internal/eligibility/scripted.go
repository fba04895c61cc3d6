package eligibility

import (
	"context"
	"sync"

	"github.com/omahs/claims-hatter/internal/model"
)

// Scripted is a deterministic Oracle for tests: it returns whatever pair was
// scripted for a (wearer, hat) key, or the Default for unscripted keys.
// A scripted Err is returned for every query, modeling an oracle outage.
type Scripted struct {
	mu      sync.Mutex
	answers map[string]model.WearerStatus

	// Default is returned for wearers with no scripted answer.
	Default model.WearerStatus

	// Err, when non-nil, is returned by every WearerStatus call.
	Err error

	// Calls counts WearerStatus invocations, for no-caching assertions.
	Calls int
}

var _ Oracle = (*Scripted)(nil)

// NewScripted returns an empty scripted oracle (everyone gets Default).
func NewScripted() *Scripted {
	return &Scripted{answers: make(map[string]model.WearerStatus)}
}

// Set scripts the answer for a (wearer, hat) pair.
func (s *Scripted) Set(wearer string, hat model.HatID, status model.WearerStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[wearer+"|"+hat.String()] = status
}

func (s *Scripted) WearerStatus(_ context.Context, wearer string, hat model.HatID) (model.WearerStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return model.WearerStatus{}, s.Err
	}
	if status, ok := s.answers[wearer+"|"+hat.String()]; ok {
		return status, nil
	}
	return s.Default, nil
}

package hats

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/omahs/claims-hatter/internal/model"
)

// Seed describes an initial hat tree for the in-memory dev registry.
//
// Example file:
//
//	[[hats]]
//	id = "1"
//	wearers = ["org-owner"]
//
//	[[hats]]
//	id = "1.2"
//	wearers = ["hatter:gate-x"]
type Seed struct {
	Hats []SeedHat `toml:"hats"`
}

// SeedHat is one hat entry in a seed file.
type SeedHat struct {
	ID      model.HatID `toml:"id"`
	Wearers []string    `toml:"wearers"`
}

// LoadSeed parses a TOML seed file.
func LoadSeed(path string) (*Seed, error) {
	var s Seed
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return nil, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return &s, nil
}

// Apply creates the seeded hats and grants the listed wearers. Hats are
// created shallowest-first so children always find their admin hat.
func (s *Seed) Apply(m *Memory) error {
	hats := make([]SeedHat, len(s.Hats))
	copy(hats, s.Hats)
	sort.Slice(hats, func(i, j int) bool {
		if li, lj := hats[i].ID.Level(), hats[j].ID.Level(); li != lj {
			return li < lj
		}
		return hats[i].ID < hats[j].ID
	})

	for _, h := range hats {
		if err := m.CreateHat(h.ID); err != nil {
			return fmt.Errorf("seed hat %s: %w", h.ID, err)
		}
		for _, w := range h.Wearers {
			if err := m.Grant(w, h.ID); err != nil {
				return fmt.Errorf("seed wearer %s of %s: %w", w, h.ID, err)
			}
		}
	}
	return nil
}

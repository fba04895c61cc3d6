package model

import "strings"

// HatID identifies a hat in the registry's hierarchy as a dotted path of
// positive decimal segments, e.g. "1", "1.2", "1.2.3". Each segment is one
// level below its prefix; "1.2" is the admin position for "1.2.3".
type HatID string

// String returns the string representation of the hat id.
func (h HatID) String() string {
	return string(h)
}

// IsValid reports whether the id is a well-formed dotted path.
func (h HatID) IsValid() bool {
	if h == "" {
		return false
	}
	for _, seg := range strings.Split(string(h), ".") {
		if seg == "" {
			return false
		}
		for _, r := range seg {
			if r < '0' || r > '9' {
				return false
			}
		}
		if seg[0] == '0' {
			return false
		}
	}
	return true
}

// Level returns the depth of the hat in the hierarchy. Top-level hats are
// level 1. Returns 0 for the empty id.
func (h HatID) Level() int {
	if h == "" {
		return 0
	}
	return strings.Count(string(h), ".") + 1
}

// IsTopLevel reports whether the hat has no admin position above it.
func (h HatID) IsTopLevel() bool {
	return h != "" && !strings.Contains(string(h), ".")
}

// Admin returns the hat id immediately superior to h in the hierarchy.
// Top-level hats (and the empty id) have no admin; the empty id is returned.
func (h HatID) Admin() HatID {
	idx := strings.LastIndexByte(string(h), '.')
	if idx < 0 {
		return ""
	}
	return h[:idx]
}

// IsAncestorOf reports whether h sits strictly above other on the same branch.
func (h HatID) IsAncestorOf(other HatID) bool {
	return h != "" && other != h && strings.HasPrefix(string(other), string(h)+".")
}

package model

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateGate checks a Gate for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the gate is valid.
func ValidateGate(g *Gate) error {
	var ve ValidationError

	if !g.Hat.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "hat",
			Message: fmt.Sprintf("invalid hat id %q", g.Hat),
		})
	} else if g.Hat.IsTopLevel() {
		// A top-level hat has no admin position, so nothing could ever
		// authorize the gate; refuse at creation rather than yield a gate
		// that can never become claimable.
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "hat",
			Message: "top-level hats have no admin and cannot be gated",
		})
	}

	if strings.TrimSpace(g.Factory) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "factory", Message: "is required"})
	}

	if strings.TrimSpace(g.Self) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "self", Message: "is required"})
	}

	if g.OracleURL != "" {
		u, err := url.Parse(g.OracleURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			ve.Errors = append(ve.Errors, FieldError{
				Field:   "oracle_url",
				Message: fmt.Sprintf("must be an http(s) URL, got %q", g.OracleURL),
			})
		}
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for entity lookups. "Not found" is an expected, handled
// outcome and must stay distinguishable from unexpected store failures.
var (
	ErrLocalityNotFound = errors.New("locality not found")
	ErrDomainNotFound   = errors.New("domain not found")
	ErrCountryNotFound  = errors.New("country not found")
	ErrActorNotFound    = errors.New("actor not found")
)

// ErrDuplicateKey indicates a unique constraint violation (maps to HTTP 409 Conflict).
var ErrDuplicateKey = errors.New("duplicate key")

// ValidationError reports the first failing field of a submission.
type ValidationError struct {
	Key string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission: missing or malformed %q", e.Key)
}

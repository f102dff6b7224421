package domain

import (
	"errors"
)

// Sentinel errors surfaced to callers. The API layer maps these to
// HTTP status codes with errors.Is.
var (
	// ErrNotFound indicates a missing item history or unknown alert ID
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition indicates an illegal alert lifecycle transition
	ErrInvalidTransition = errors.New("invalid status transition")
)

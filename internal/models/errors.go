package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and handlers. Handlers map
// these onto HTTP statuses; nothing in the core terminates the
// process on failure.
var (
	// ErrValidation marks malformed boundary input (bad date, bad
	// coordinate, negative counts). Never results in a partial write.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced resource that does not exist.
	// An empty-but-valid range is not ErrNotFound.
	ErrNotFound = errors.New("not found")
)

// Validationf builds a field-level validation error wrapping
// ErrValidation so callers can test it with errors.Is.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a malformed request. Not retried.
	ErrValidation = errors.New("validation failed")
	// ErrQueryFailed signals that the backing store rejected a query.
	ErrQueryFailed = errors.New("search failed")
	// ErrNotFound signals a missing record for a requested identifier.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrDeviceRequired signals that an operation needs a device identity.
	ErrDeviceRequired = errors.New("device id required")
)

// ValidationError names the offending field of a rejected request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for field.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrNetwork              = errors.New("backend unreachable")
	ErrInvalidState         = errors.New("invalid state")
	ErrFormat               = errors.New("invalid format")
	ErrBusy                 = errors.New("request already in flight")
	ErrStale                = errors.New("response discarded after reset")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrNotFound             = errors.New("not found")
)

// ServerError reports a non-2xx response from the generation backend.
type ServerError struct {
	Status int
	Detail string
}

func (e *ServerError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend status %d", e.Status)
}

// ValidationError carries the reason a user input was rejected. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
	// Max is the violated upper bound, when there is one.
	Max int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid is shorthand for a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StatusOf extracts the backend status from err, or 0 when err is not a ServerError.
func StatusOf(err error) int {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

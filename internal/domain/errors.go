// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds returned by every lifecycle operation. Callers classify a
// failure with errors.Is against exactly one of these values.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the actor is not allowed to act on the entity.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState is returned when the operation is illegal for the current status.
	ErrInvalidState = errors.New("invalid state")

	// ErrConflict is returned on uniqueness or idempotency violations.
	ErrConflict = errors.New("conflict")

	// ErrInvalidArgument is returned for malformed input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAmountMismatch is returned when a gateway reports a different amount
	// than the one recorded at prepare time.
	ErrAmountMismatch = errors.New("payment amount mismatch")

	// ErrGatewayError is returned when the external payment provider fails.
	ErrGatewayError = errors.New("payment gateway error")

	// ErrUnauthorized is returned when no authenticated identity is present.
	ErrUnauthorized = errors.New("unauthorized")
)

// Aliases kept for field level validation helpers.
var (
	// ErrValidation marks a field validation failure.
	ErrValidation = ErrInvalidArgument

	// ErrInvalidID is returned when an identifier is malformed.
	ErrInvalidID = fmt.Errorf("%w: invalid ID", ErrInvalidArgument)
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the specific field error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is makes every ValidationError match ErrInvalidArgument.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// kinds is ordered so the most specific kind wins when an error chain
// matches more than one.
var kinds = []error{
	ErrAmountMismatch,
	ErrGatewayError,
	ErrUnauthorized,
	ErrForbidden,
	ErrNotFound,
	ErrInvalidState,
	ErrConflict,
	ErrInvalidArgument,
}

// KindOf returns the error kind err matches, or nil for an unclassified error.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

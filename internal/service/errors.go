package service

import (
	"errors"
	"fmt"

	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/store"
)

// ServiceError wraps a failed operation with context.
type ServiceError struct {
	// Operation is the use case that failed (e.g. "accept_offer").
	Operation string
	// Message is a human-readable description of the failure.
	Message string
	// Err carries the domain error kind and, when present, the cause.
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// newError reports a business rule violation of the given kind.
func newError(operation string, kind error, message string) error {
	return &ServiceError{Operation: operation, Message: message, Err: kind}
}

// wrapError classifies err and wraps it for operation. Store not-found and
// duplicate errors become domain.ErrNotFound and domain.ErrConflict; errors
// that already carry a domain kind keep it. A *ServiceError produced deeper
// in the same call is returned unchanged.
func wrapError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return err
	}

	if domain.KindOf(err) == nil {
		switch {
		case store.IsNotFoundError(err):
			err = fmt.Errorf("%w: %w", domain.ErrNotFound, err)
		case store.IsDuplicateError(err):
			err = fmt.Errorf("%w: %w", domain.ErrConflict, err)
		case errors.Is(err, store.ErrInvalidEntity):
			err = fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
		}
	}

	return &ServiceError{Operation: operation, Message: message, Err: err}
}

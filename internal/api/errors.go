package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/teolgogo/quote-engine/internal/api/shared"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/service/auth"
)

// MapErrorToStatusCode maps an error kind to an HTTP status code. Errors of
// no known kind are internal errors.
func MapErrorToStatusCode(err error) int {
	if isAuthError(err) {
		return http.StatusUnauthorized
	}

	switch domain.KindOf(err) {
	case domain.ErrUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrForbidden:
		return http.StatusForbidden
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrInvalidState, domain.ErrConflict:
		return http.StatusConflict
	case domain.ErrInvalidArgument:
		return http.StatusBadRequest
	case domain.ErrAmountMismatch:
		return http.StatusUnprocessableEntity
	case domain.ErrGatewayError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isAuthError(err error) bool {
	return errors.Is(err, auth.ErrInvalidToken) ||
		errors.Is(err, auth.ErrExpiredToken) ||
		errors.Is(err, auth.ErrInvalidRefreshToken) ||
		errors.Is(err, auth.ErrExpiredRefreshToken) ||
		errors.Is(err, auth.ErrWrongTokenType) ||
		errors.Is(err, auth.ErrInvalidRole)
}

// GetSafeErrorMessage returns a client safe message for err. Validation
// failures name the offending field; every other kind gets a fixed message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"
	case isAuthError(err):
		return "Invalid token"
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		return "Invalid " + verr.Field + ": " + verr.Message
	}

	switch domain.KindOf(err) {
	case domain.ErrUnauthorized:
		return "Invalid credentials"
	case domain.ErrForbidden:
		return "You are not allowed to perform this action"
	case domain.ErrNotFound:
		return "Resource not found"
	case domain.ErrInvalidState:
		return "The operation is not allowed in the current state"
	case domain.ErrConflict:
		return "The resource already exists or was already processed"
	case domain.ErrInvalidArgument:
		return "Invalid request data"
	case domain.ErrAmountMismatch:
		return "Payment amount does not match the prepared amount"
	case domain.ErrGatewayError:
		return "Payment provider error"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted cause. fallback replaces the generic message of a 500.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusForbidden || status == http.StatusUnprocessableEntity {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// SanitizeValidationError turns a validator error into a message naming
// the first failing field and rule.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Format: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min", "gte":
		return "too short or too small"
	case "max", "lte":
		return "too long or too large"
	case "gt":
		return "must be positive"
	case "oneof":
		return "invalid value"
	case "latitude", "longitude":
		return "coordinate out of range"
	case "uuid":
		return "invalid identifier"
	default:
		return "validation failed"
	}
}

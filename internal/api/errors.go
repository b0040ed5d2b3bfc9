package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/svenhuster/spacecode/internal/domain"
	"github.com/svenhuster/spacecode/internal/service"
	"github.com/svenhuster/spacecode/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrProblemNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrNoActiveSession),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors: the operation clashes with current state
	case errors.Is(err, service.ErrProblemExists),
		errors.Is(err, service.ErrSessionTerminal),
		errors.Is(err, domain.ErrSessionNotActive),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict

	// The session's time budget ran out; the resource is gone for writes
	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusGone

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidProblemURL),
		errors.Is(err, domain.ErrInvalidSessionDuration),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrProblemNotFound):
		return "Problem not found"

	case errors.Is(err, service.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, service.ErrNoActiveSession):
		return "No active session"

	case errors.Is(err, service.ErrProblemExists):
		return "Problem already tracked"

	case errors.Is(err, service.ErrSessionTerminal):
		return "Session already finished"

	case errors.Is(err, domain.ErrSessionExpired):
		return "Session expired"

	case errors.Is(err, domain.ErrSessionNotActive):
		return "Session is not active"

	case errors.Is(err, domain.ErrInvalidTransition):
		return "Invalid session state transition"

	case errors.Is(err, domain.ErrInvalidRating):
		return "Rating must be between 0 and 5"

	case errors.Is(err, domain.ErrInvalidProblemURL):
		return "Invalid problem URL"

	case errors.Is(err, domain.ErrInvalidSessionDuration):
		return "Session duration must be between 5 and 300 minutes"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	// ErrNoProblemsAvailable is handled separately with StatusNoContent

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'CreateProblemRequest.URL' Error:Field
	// validation for 'URL' failed on the 'required' tag"
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

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "url":
		return "invalid URL format"
	case "min":
		return "value too small"
	case "max":
		return "value too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

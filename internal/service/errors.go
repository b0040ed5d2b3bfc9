package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrProblemNotFound indicates that the problem does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrProblemNotFound = errors.New("problem not found")

	// ErrProblemExists indicates that a problem with the given URL is
	// already tracked. API layer should map this to HTTP 409 Conflict.
	ErrProblemExists = errors.New("problem already exists")

	// ErrSessionNotFound indicates that the session does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoActiveSession indicates that no session is currently active or
	// paused. API layer should map this to HTTP 404 Not Found.
	ErrNoActiveSession = errors.New("no active session")

	// ErrSessionTerminal indicates that an operation was attempted on a
	// session that already reached a terminal state.
	// API layer should map this to HTTP 409 Conflict.
	ErrSessionTerminal = errors.New("session already finished")

	// ErrNoProblemsAvailable indicates that the scheduler has nothing
	// selectable: every active problem is dormant or the pool is empty.
	ErrNoProblemsAvailable = errors.New("no problems available for review")
)

// ServiceError wraps errors from the service layer with additional context.
// This allows consumers to differentiate between different types of service
// errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_review", "start_session")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError with the given operation, message, and wrapped error.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

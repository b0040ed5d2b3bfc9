package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidRating is returned when a rating falls outside the 0-5 scale.
	ErrInvalidRating = errors.New("rating must be between 0 and 5")

	// ErrInvalidProblemURL is returned when a problem URL is malformed or
	// does not contain a recognizable problem slug.
	ErrInvalidProblemURL = errors.New("invalid problem URL")

	// ErrInvalidSessionStatus is returned when a session status is not valid.
	ErrInvalidSessionStatus = errors.New("invalid session status")

	// ErrInvalidTransition is returned when a session state transition is
	// not permitted from the current status.
	ErrInvalidTransition = errors.New("invalid session state transition")

	// ErrSessionExpired is returned when an operation is attempted on a
	// session whose time budget has run out. It is an authoritative signal
	// to terminate the session regardless of client-reported state.
	ErrSessionExpired = errors.New("session expired")
)

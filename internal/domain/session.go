package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the lifecycle state of a practice session.
type SessionStatus string

// Possible session status values.
const (
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
	SessionExpired   SessionStatus = "expired"
)

// Session duration bounds.
const (
	MinSessionDuration = 5 * time.Minute
	MaxSessionDuration = 300 * time.Minute
)

// Common validation errors for Session.
var (
	ErrInvalidSessionDuration = fmt.Errorf(
		"session duration must be between %s and %s",
		MinSessionDuration, MaxSessionDuration,
	)
	ErrSessionNotActive = errors.New("session is not active")
)

// Session is a time-bounded sequence of problem presentations and rating
// submissions.
//
// Elapsed time is accounted from stored deltas, never from naive
// subtraction of absolute timestamps: pausing snapshots the elapsed time
// into TotalElapsed and resuming resets the reference point (ResumedAt),
// so wall-clock time spent paused never leaks into the budget and no
// drift accumulates across repeated pause/resume cycles.
type Session struct {
	ID          uuid.UUID     `json:"id"`
	StartedAt   time.Time     `json:"started_at"`
	ResumedAt   time.Time     `json:"resumed_at"` // reference point for the current active stretch
	PausedAt    *time.Time    `json:"paused_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Status      SessionStatus `json:"status"`
	MaxDuration time.Duration `json:"max_duration"`

	// TotalElapsed accumulates active time across pause/resume cycles.
	// It never decreases and never exceeds MaxDuration.
	TotalElapsed time.Duration `json:"total_elapsed"`

	ProblemsReviewed int       `json:"problems_reviewed"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewSession creates an active session with the given time budget.
func NewSession(maxDuration time.Duration, now time.Time) (*Session, error) {
	if maxDuration < MinSessionDuration || maxDuration > MaxSessionDuration {
		return nil, ErrInvalidSessionDuration
	}

	return &Session{
		ID:          uuid.New(),
		StartedAt:   now,
		ResumedAt:   now,
		Status:      SessionActive,
		MaxDuration: maxDuration,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Terminal reports whether the session is in a terminal state.
func (s *Session) Terminal() bool {
	switch s.Status {
	case SessionCompleted, SessionAbandoned, SessionExpired:
		return true
	default:
		return false
	}
}

// Elapsed returns the total active time consumed so far, capped at the
// session's time budget. While paused or terminal, only the accumulated
// snapshots count; while active, the current stretch since ResumedAt is
// added on top.
func (s *Session) Elapsed(now time.Time) time.Duration {
	elapsed := s.TotalElapsed
	if s.Status == SessionActive {
		if stretch := now.Sub(s.ResumedAt); stretch > 0 {
			elapsed += stretch
		}
	}
	if elapsed > s.MaxDuration {
		return s.MaxDuration
	}
	return elapsed
}

// Remaining returns the time budget left, floored at zero.
func (s *Session) Remaining(now time.Time) time.Duration {
	return s.MaxDuration - s.Elapsed(now)
}

// IsExpired reports whether the session's time budget has run out. Once a
// session is in the expired state the check stays true regardless of the
// clock, so repeated expiry checks after termination are no-ops.
func (s *Session) IsExpired(now time.Time) bool {
	if s.Status == SessionExpired {
		return true
	}
	if s.Terminal() {
		return false
	}
	return s.Remaining(now) <= 0
}

// Pause transitions an active session to paused, snapshotting the elapsed
// time of the current active stretch into TotalElapsed.
func (s *Session) Pause(now time.Time) error {
	if s.Status != SessionActive {
		return fmt.Errorf("%w: cannot pause %s session", ErrInvalidTransition, s.Status)
	}

	if stretch := now.Sub(s.ResumedAt); stretch > 0 {
		s.TotalElapsed += stretch
	}
	if s.TotalElapsed > s.MaxDuration {
		s.TotalElapsed = s.MaxDuration
	}

	s.Status = SessionPaused
	s.PausedAt = &now
	s.UpdatedAt = now
	return nil
}

// Resume transitions a paused session back to active, resetting the
// elapsed-since-resume reference point. Time spent paused is excluded
// from the budget.
func (s *Session) Resume(now time.Time) error {
	if s.Status != SessionPaused {
		return fmt.Errorf("%w: cannot resume %s session", ErrInvalidTransition, s.Status)
	}

	s.Status = SessionActive
	s.ResumedAt = now
	s.PausedAt = nil
	s.UpdatedAt = now
	return nil
}

// Complete ends the session normally (user finished, or the budget ran
// out at the moment of a user action).
func (s *Session) Complete(now time.Time) error {
	return s.terminate(SessionCompleted, now)
}

// Abandon ends the session by explicit user termination.
func (s *Session) Abandon(now time.Time) error {
	return s.terminate(SessionAbandoned, now)
}

// Expire ends the session because the time budget ran out, detected
// server-side. Expiring an already-expired session is a no-op.
func (s *Session) Expire(now time.Time) error {
	if s.Status == SessionExpired {
		return nil
	}
	return s.terminate(SessionExpired, now)
}

// terminate moves the session into a terminal state from active or
// paused, folding any in-flight active stretch into TotalElapsed first.
func (s *Session) terminate(status SessionStatus, now time.Time) error {
	switch s.Status {
	case SessionActive, SessionPaused:
	default:
		return fmt.Errorf("%w: cannot move %s session to %s", ErrInvalidTransition, s.Status, status)
	}

	if s.Status == SessionActive {
		if stretch := now.Sub(s.ResumedAt); stretch > 0 {
			s.TotalElapsed += stretch
		}
		if s.TotalElapsed > s.MaxDuration {
			s.TotalElapsed = s.MaxDuration
		}
	}

	s.Status = status
	s.CompletedAt = &now
	s.PausedAt = nil
	s.UpdatedAt = now
	return nil
}

// ValidStatus reports whether the given string is a known session status.
func ValidStatus(status SessionStatus) bool {
	switch status {
	case SessionActive, SessionPaused, SessionCompleted, SessionAbandoned, SessionExpired:
		return true
	default:
		return false
	}
}

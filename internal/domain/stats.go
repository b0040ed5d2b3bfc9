package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ProblemStats.
var (
	ErrEmptyStatsProblemID = errors.New("problem stats problem ID cannot be empty")
	ErrInvalidInterval     = errors.New("interval must be greater than or equal to 0")
	ErrInvalidEaseFactor   = errors.New("easiness factor must be greater than 1.0")
)

// ProblemStats tracks spaced repetition state for a single problem.
// Stats are created lazily on the first rating submission and updated
// exclusively by the srs package; nothing else may set NextReviewAt.
type ProblemStats struct {
	ProblemID          uuid.UUID     `json:"problem_id"`
	EaseFactor         float64       `json:"ease_factor"`         // Easiness factor (1.3-2.5)
	Interval           time.Duration `json:"interval"`            // Current interval
	ConsecutiveCorrect int           `json:"consecutive_correct"` // Successful reviews in a row
	NextReviewAt       time.Time     `json:"next_review_at"`      // When the problem is due next
	LastRating         Rating        `json:"last_rating"`
	LastReviewedAt     time.Time     `json:"last_reviewed_at"`
	AverageRating      float64       `json:"average_rating"` // Cumulative mean over all ratings
	ReviewCount        int           `json:"review_count"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// NewProblemStats creates fresh statistics for a problem with default
// values. The problem is available for review immediately.
func NewProblemStats(problemID uuid.UUID, now time.Time) (*ProblemStats, error) {
	stats := &ProblemStats{
		ProblemID:          problemID,
		EaseFactor:         2.5,
		Interval:           0,
		ConsecutiveCorrect: 0,
		NextReviewAt:       now,
		LastRating:         RatingSkipped, // no rating received yet
		LastReviewedAt:     time.Time{},
		AverageRating:      0,
		ReviewCount:        0,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := stats.Validate(); err != nil {
		return nil, err
	}
	return stats, nil
}

// Validate checks if the ProblemStats has valid data.
// Returns an error if any field fails validation.
func (s *ProblemStats) Validate() error {
	if s.ProblemID == uuid.Nil {
		return ErrEmptyStatsProblemID
	}
	if s.Interval < 0 {
		return ErrInvalidInterval
	}
	if s.EaseFactor <= 1.0 {
		return ErrInvalidEaseFactor
	}
	return nil
}

// IsDue reports whether the problem is due for review at the given time.
func (s *ProblemStats) IsDue(now time.Time) bool {
	return !s.NextReviewAt.After(now)
}

// Clone returns a copy of the stats. The srs package follows an immutable
// update pattern: it never modifies stats in place.
func (s *ProblemStats) Clone() *ProblemStats {
	c := *s
	return &c
}

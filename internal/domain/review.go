package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Review.
var (
	ErrEmptyReviewProblemID = errors.New("review problem ID cannot be empty")
	ErrNegativeTimeSpent    = errors.New("time spent cannot be negative")
)

// Review is an immutable, append-only log record of a single rating
// submission (or skip). Reviews are never mutated after creation; the
// cumulative average on ProblemStats must always equal the mean of the
// problem's non-skipped review ratings.
type Review struct {
	ID         uuid.UUID     `json:"id"`
	ProblemID  uuid.UUID     `json:"problem_id"`
	SessionID  uuid.UUID     `json:"session_id,omitempty"` // Nil when reviewed outside a session
	Rating     Rating        `json:"rating"`               // 0-5, or RatingSkipped
	TimeSpent  time.Duration `json:"time_spent"`
	ReviewedAt time.Time     `json:"reviewed_at"`
}

// NewReview creates a review log record for a rating submission.
// The rating may be RatingSkipped for skipped problems.
func NewReview(problemID, sessionID uuid.UUID, rating Rating, timeSpent time.Duration, now time.Time) (*Review, error) {
	r := &Review{
		ID:         uuid.New(),
		ProblemID:  problemID,
		SessionID:  sessionID,
		Rating:     rating,
		TimeSpent:  timeSpent,
		ReviewedAt: now,
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks if the Review has valid data.
func (r *Review) Validate() error {
	if r.ProblemID == uuid.Nil {
		return ErrEmptyReviewProblemID
	}
	if r.TimeSpent < 0 {
		return ErrNegativeTimeSpent
	}
	if r.Rating != RatingSkipped {
		if err := r.Rating.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Skipped reports whether this record marks a skipped problem.
func (r *Review) Skipped() bool {
	return r.Rating == RatingSkipped
}

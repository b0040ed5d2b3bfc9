package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/domain"
)

// Common request/response structures

// CreateProblemRequest defines the payload for adding a problem.
type CreateProblemRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// UpdateProblemRequest defines the payload for editing problem metadata.
// Omitted fields are left unchanged.
type UpdateProblemRequest struct {
	Title      *string  `json:"title,omitempty"`
	Number     *int     `json:"number,omitempty"     validate:"omitempty,min=1"`
	Difficulty *string  `json:"difficulty,omitempty" validate:"omitempty,oneof=Easy Medium Hard"`
	Tags       []string `json:"tags,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
	IsActive   *bool    `json:"is_active,omitempty"`
}

// StartSessionRequest defines the payload for starting a study session.
// DurationMinutes defaults to the server's configured session length when
// omitted.
type StartSessionRequest struct {
	DurationMinutes int `json:"duration_minutes" validate:"omitempty,min=5,max=300"`
}

// SubmitReviewRequest defines the payload for rating a problem.
// Rating is a pointer so the zero rating (failed) survives the
// required check.
type SubmitReviewRequest struct {
	ProblemID        string `json:"problem_id"         validate:"required,uuid"`
	Rating           *int   `json:"rating"             validate:"required,min=0,max=5"`
	TimeSpentSeconds int    `json:"time_spent_seconds" validate:"omitempty,min=0"`
}

// SkipProblemRequest defines the payload for skipping a problem.
type SkipProblemRequest struct {
	ProblemID        string `json:"problem_id"         validate:"required,uuid"`
	TimeSpentSeconds int    `json:"time_spent_seconds" validate:"omitempty,min=0"`
}

// ProblemStatsResponse represents the scheduling state of a problem.
type ProblemStatsResponse struct {
	EaseFactor         float64    `json:"ease_factor"`
	IntervalHours      float64    `json:"interval_hours"`
	ConsecutiveCorrect int        `json:"consecutive_correct"`
	NextReviewAt       time.Time  `json:"next_review_at"`
	LastRating         int        `json:"last_rating"`
	LastReviewedAt     *time.Time `json:"last_reviewed_at,omitempty"`
	AverageRating      float64    `json:"average_rating"`
	ReviewCount        int        `json:"review_count"`
}

// ProblemResponse represents the response data for a problem.
type ProblemResponse struct {
	ID         string                `json:"id"`
	URL        string                `json:"url"`
	Slug       string                `json:"slug"`
	Title      string                `json:"title,omitempty"`
	Number     int                   `json:"number,omitempty"`
	Difficulty string                `json:"difficulty,omitempty"`
	Tags       []string              `json:"tags,omitempty"`
	Notes      string                `json:"notes,omitempty"`
	IsActive   bool                  `json:"is_active"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
	Stats      *ProblemStatsResponse `json:"stats,omitempty"`
}

// SessionResponse represents the response data for a study session.
// ElapsedSeconds and RemainingSeconds are computed server-side at response
// time; clients must not derive them from timestamps.
type SessionResponse struct {
	ID                 string     `json:"id"`
	Status             string     `json:"status"`
	StartedAt          time.Time  `json:"started_at"`
	PausedAt           *time.Time `json:"paused_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	MaxDurationSeconds int        `json:"max_duration_seconds"`
	ElapsedSeconds     int        `json:"elapsed_seconds"`
	RemainingSeconds   int        `json:"remaining_seconds"`
	ProblemsReviewed   int        `json:"problems_reviewed"`
}

// ReviewResponse represents a single review log entry.
type ReviewResponse struct {
	ID               string    `json:"id"`
	ProblemID        string    `json:"problem_id"`
	SessionID        string    `json:"session_id,omitempty"`
	Rating           int       `json:"rating"`
	Skipped          bool      `json:"skipped"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	ReviewedAt       time.Time `json:"reviewed_at"`
}

func statsToResponse(stats *domain.ProblemStats) *ProblemStatsResponse {
	if stats == nil {
		return nil
	}
	resp := &ProblemStatsResponse{
		EaseFactor:         stats.EaseFactor,
		IntervalHours:      stats.Interval.Hours(),
		ConsecutiveCorrect: stats.ConsecutiveCorrect,
		NextReviewAt:       stats.NextReviewAt,
		LastRating:         int(stats.LastRating),
		AverageRating:      stats.AverageRating,
		ReviewCount:        stats.ReviewCount,
	}
	if !stats.LastReviewedAt.IsZero() {
		t := stats.LastReviewedAt
		resp.LastReviewedAt = &t
	}
	return resp
}

func problemToResponse(p *domain.Problem) ProblemResponse {
	return ProblemResponse{
		ID:         p.ID.String(),
		URL:        p.URL,
		Slug:       p.Slug,
		Title:      p.Title,
		Number:     p.Number,
		Difficulty: p.Difficulty,
		Tags:       p.Tags,
		Notes:      p.Notes,
		IsActive:   p.IsActive,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		Stats:      statsToResponse(p.Stats),
	}
}

func sessionToResponse(s *domain.Session, now time.Time) SessionResponse {
	return SessionResponse{
		ID:                 s.ID.String(),
		Status:             string(s.Status),
		StartedAt:          s.StartedAt,
		PausedAt:           s.PausedAt,
		CompletedAt:        s.CompletedAt,
		MaxDurationSeconds: int(s.MaxDuration.Seconds()),
		ElapsedSeconds:     int(s.Elapsed(now).Seconds()),
		RemainingSeconds:   int(s.Remaining(now).Seconds()),
		ProblemsReviewed:   s.ProblemsReviewed,
	}
}

func reviewToResponse(r *domain.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:               r.ID.String(),
		ProblemID:        r.ProblemID.String(),
		Rating:           int(r.Rating),
		Skipped:          r.Rating == domain.RatingSkipped,
		TimeSpentSeconds: int(r.TimeSpent.Seconds()),
		ReviewedAt:       r.ReviewedAt,
	}
	if r.SessionID != uuid.Nil {
		resp.SessionID = r.SessionID.String()
	}
	return resp
}

package scheduler

import (
	"time"

	"github.com/svenhuster/spacecode/internal/domain"
)

// Mastery thresholds: a problem counts as mastered once its average
// rating is high and its interval has grown past a day.
const (
	masteredMinAverage  = 4.0
	masteredMinInterval = 24 * time.Hour
)

// StudySummary aggregates scheduling state across the active problem set
// for the dashboard.
type StudySummary struct {
	TotalProblems int `json:"total_problems"`

	// Due buckets. New problems count as due now.
	DueNow      int `json:"due_now"`
	DueToday    int `json:"due_today"`
	DueThisWeek int `json:"due_this_week"`

	ByDifficulty map[string]int        `json:"by_difficulty"`
	ByRating     map[domain.Rating]int `json:"by_rating"`

	// AverageRating is the mean of per-problem average ratings across all
	// rated problems.
	AverageRating float64 `json:"average_rating"`

	TotalReviews     int `json:"total_reviews"`
	ProblemsMastered int `json:"problems_mastered"`
}

// Summarize computes study statistics over the active problem set using
// a single time snapshot.
func Summarize(problems []*domain.Problem, now time.Time) *StudySummary {
	summary := &StudySummary{
		ByDifficulty: make(map[string]int),
		ByRating:     make(map[domain.Rating]int),
	}

	ratingSum := 0.0
	ratedProblems := 0

	for _, p := range problems {
		if !p.IsActive {
			continue
		}
		summary.TotalProblems++

		difficulty := p.Difficulty
		if difficulty == "" {
			difficulty = "Unknown"
		}
		summary.ByDifficulty[difficulty]++

		stats := p.Stats
		if stats == nil {
			// Never reviewed: available immediately.
			summary.DueNow++
			continue
		}

		switch {
		case stats.IsDue(now):
			summary.DueNow++
		case stats.IsDue(now.Add(24 * time.Hour)):
			summary.DueToday++
		case stats.IsDue(now.Add(7 * 24 * time.Hour)):
			summary.DueThisWeek++
		}

		if stats.LastRating.IsValid() {
			summary.ByRating[stats.LastRating]++
			ratingSum += stats.AverageRating
			ratedProblems++
		}

		summary.TotalReviews += stats.ReviewCount

		if stats.AverageRating >= masteredMinAverage && stats.Interval > masteredMinInterval {
			summary.ProblemsMastered++
		}
	}

	if ratedProblems > 0 {
		summary.AverageRating = ratingSum / float64(ratedProblems)
	}

	return summary
}

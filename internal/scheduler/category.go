package scheduler

import (
	"time"

	"github.com/svenhuster/spacecode/internal/domain"
)

// Category partitions the active problem set into mutually exclusive
// scheduling buckets. Every problem lands in exactly one category per
// scheduling pass; earlier values win when multiple rules match.
type Category int

// Categories in priority order.
const (
	// CategoryFailedRecent: due, and the last rating was a failure.
	CategoryFailedRecent Category = iota

	// CategoryOverdue: due, last rating was not a failure.
	CategoryOverdue

	// CategoryNew: never reviewed (no stats).
	CategoryNew

	// CategoryReinforcement: not due, reviewed within the reinforcement
	// window, and the average rating is below the threshold.
	CategoryReinforcement

	// CategoryDormant: reviewed, not due, performing adequately. Dormant
	// problems are never scored or selected.
	CategoryDormant
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFailedRecent:
		return "failed_recent"
	case CategoryOverdue:
		return "overdue"
	case CategoryNew:
		return "new"
	case CategoryReinforcement:
		return "reinforcement"
	case CategoryDormant:
		return "dormant"
	default:
		return "unknown"
	}
}

// Selectable reports whether problems in this category may be presented.
func (c Category) Selectable() bool {
	return c != CategoryDormant
}

// Classify assigns a problem to exactly one category for the given
// scheduling pass. The same now value must be used for every problem in
// a pass so due checks and the reinforcement window cannot skew.
func Classify(p *domain.Problem, now time.Time, cfg Config) Category {
	stats := p.Stats
	if stats == nil {
		return CategoryNew
	}

	if stats.IsDue(now) {
		if stats.LastRating.IsFailure() {
			return CategoryFailedRecent
		}
		return CategoryOverdue
	}

	if !stats.LastReviewedAt.IsZero() &&
		now.Sub(stats.LastReviewedAt) < cfg.ReinforcementWindow &&
		stats.AverageRating < cfg.ReinforcementThreshold {
		return CategoryReinforcement
	}

	return CategoryDormant
}

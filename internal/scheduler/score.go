package scheduler

import (
	"time"

	"github.com/svenhuster/spacecode/internal/domain"
)

// Score assigns a problem its deterministic urgency score for the given
// category. The randomization term is added separately by the engine, so
// this function stays pure and directly testable.
//
// Score bands, highest to lowest:
//   - FailedRecent: overdue score plus a fixed boost (510-1000+ range),
//     always above plain Overdue for the same overdue duration.
//   - Overdue: base plus a capped per-hour ramp (200-700).
//   - New: fixed 100, above every Reinforcement score.
//   - Reinforcement: 15-50, shrinking as the average rating improves.
//   - Dormant: zero, never selected.
func Score(p *domain.Problem, category Category, now time.Time, cfg Config) float64 {
	switch category {
	case CategoryNew:
		return cfg.NewScore

	case CategoryFailedRecent:
		return overdueScore(p.Stats, now, cfg) + cfg.FailedBoost

	case CategoryOverdue:
		return overdueScore(p.Stats, now, cfg)

	case CategoryReinforcement:
		return cfg.ReinforcementBase - p.Stats.AverageRating*cfg.ReinforcementSlope

	default:
		return 0
	}
}

// overdueScore ramps with how long the problem has been overdue, capped
// so a massive backlog plateaus rather than dominating every slot.
func overdueScore(stats *domain.ProblemStats, now time.Time, cfg Config) float64 {
	overdueHours := now.Sub(stats.NextReviewAt).Hours()
	if overdueHours < 0 {
		overdueHours = 0
	}

	ramp := overdueHours * cfg.OverduePerHour
	if ramp > cfg.OverdueCap {
		ramp = cfg.OverdueCap
	}
	return cfg.DueBaseScore + ramp
}

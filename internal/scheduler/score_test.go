package scheduler

import (
	"testing"
	"time"

	"github.com/svenhuster/spacecode/internal/domain"
)

func TestScoreConcreteScenarios(t *testing.T) {
	t.Parallel() // Enable parallel execution

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	cfg := DefaultConfig()

	testCases := []struct {
		name     string
		stats    *domain.ProblemStats
		category Category
		expected float64
	}{
		{
			name:     "new problem scores the fixed base",
			stats:    nil,
			category: CategoryNew,
			expected: 100,
		},
		{
			name:     "one hour overdue",
			stats:    statsWith(now.Add(-time.Hour), now.Add(-25*time.Hour), domain.RatingSolved, 4.0),
			category: CategoryOverdue,
			expected: 210, // 200 + 1h*10
		},
		{
			name:     "one hour overdue with recent failure",
			stats:    statsWith(now.Add(-time.Hour), now.Add(-25*time.Hour), domain.RatingSolution, 2.0),
			category: CategoryFailedRecent,
			expected: 510, // 210 + 300 boost
		},
		{
			name:     "one week overdue hits the cap",
			stats:    statsWith(now.Add(-168*time.Hour), now.Add(-200*time.Hour), domain.RatingFluent, 5.0),
			category: CategoryOverdue,
			expected: 700, // 200 + min(1680, 500)
		},
		{
			name:     "reinforcement with average 2.0",
			stats:    statsWith(now.Add(6*time.Hour), now.Add(-2*time.Hour), domain.RatingDebug, 2.0),
			category: CategoryReinforcement,
			expected: 30, // 50 - 2.0*10
		},
		{
			name:     "reinforcement near the threshold",
			stats:    statsWith(now.Add(6*time.Hour), now.Add(-2*time.Hour), domain.RatingDebug, 3.5),
			category: CategoryReinforcement,
			expected: 15, // 50 - 3.5*10
		},
		{
			name:     "dormant problems are never scored",
			stats:    statsWith(now.Add(6*time.Hour), now.Add(-48*time.Hour), domain.RatingSolved, 4.5),
			category: CategoryDormant,
			expected: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestProblem(tc.stats)
			got := Score(p, tc.category, now, cfg)

			if diff := got - tc.expected; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Expected score %f, got %f", tc.expected, got)
			}
		})
	}
}

// Overdue score must strictly increase with overdue duration up to the
// cap, then plateau - it never decreases with more overdue time.
func TestOverdueScoreMonotonicUpToCap(t *testing.T) {
	t.Parallel() // Enable parallel execution

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	cfg := DefaultConfig()

	prev := -1.0
	for hours := 0; hours <= 200; hours++ {
		stats := statsWith(now.Add(-time.Duration(hours)*time.Hour), now.Add(-300*time.Hour), domain.RatingSolved, 4.0)
		p := newTestProblem(stats)
		score := Score(p, CategoryOverdue, now, cfg)

		if score < prev {
			t.Fatalf("Score decreased at %dh overdue: %f < %f", hours, score, prev)
		}
		if hours < 50 && score <= prev {
			t.Fatalf("Score did not strictly increase at %dh overdue (below cap)", hours)
		}
		if hours > 50 && score != cfg.DueBaseScore+cfg.OverdueCap {
			t.Fatalf("Expected plateau at %f past the cap, got %f at %dh", cfg.DueBaseScore+cfg.OverdueCap, score, hours)
		}
		prev = score
	}
}

// The failed boost must hold for every overdue duration: a struggling
// problem always outranks a plain overdue one with the same lateness.
func TestFailedRecentAlwaysOutranksOverdue(t *testing.T) {
	t.Parallel() // Enable parallel execution

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	cfg := DefaultConfig()

	for hours := 0; hours <= 200; hours += 5 {
		nextReview := now.Add(-time.Duration(hours) * time.Hour)

		failedStats := statsWith(nextReview, now.Add(-300*time.Hour), domain.RatingFailed, 1.0)
		overdueStats := statsWith(nextReview, now.Add(-300*time.Hour), domain.RatingSolved, 4.0)

		failedScore := Score(newTestProblem(failedStats), CategoryFailedRecent, now, cfg)
		overdueScore := Score(newTestProblem(overdueStats), CategoryOverdue, now, cfg)

		if failedScore < overdueScore+cfg.FailedBoost {
			t.Fatalf("At %dh overdue: failed score %f below overdue %f + boost", hours, failedScore, overdueScore)
		}
	}
}

// New problems must outrank every reinforcement score, including after
// worst-case jitter on both sides, so first exposure is never starved.
func TestNewAlwaysOutranksReinforcement(t *testing.T) {
	t.Parallel() // Enable parallel execution

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	cfg := DefaultConfig()

	newScore := Score(newTestProblem(nil), CategoryNew, now, cfg)

	for avg := 0.0; avg < cfg.ReinforcementThreshold; avg += 0.1 {
		stats := statsWith(now.Add(6*time.Hour), now.Add(-2*time.Hour), domain.RatingDebug, avg)
		reinforcementScore := Score(newTestProblem(stats), CategoryReinforcement, now, cfg)

		if newScore-cfg.JitterRange <= reinforcementScore+cfg.JitterRange {
			t.Fatalf("Average %f: reinforcement score %f can beat new score %f under jitter",
				avg, reinforcementScore, newScore)
		}
	}
}

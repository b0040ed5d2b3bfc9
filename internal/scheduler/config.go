package scheduler

import "time"

// Config holds the scoring weights, caps, and composition ratios used by
// the scheduler. It is an immutable value threaded into the scoring
// functions; tests override individual fields on their own copy instead
// of touching shared state.
type Config struct {
	// NewScore is the fixed score for never-reviewed problems.
	NewScore float64

	// DueBaseScore is the score floor for any due problem.
	DueBaseScore float64

	// OverduePerHour is the score gained per hour a problem is overdue.
	OverduePerHour float64

	// OverdueCap bounds the total overdue contribution, so a multi-day
	// backlog plateaus instead of burying new problems forever.
	OverdueCap float64

	// FailedBoost is added on top of the overdue score for due problems
	// whose last rating was a failure, guaranteeing struggling problems
	// outrank plain overdue ones.
	FailedBoost float64

	// ReinforcementBase and ReinforcementSlope shape the reinforcement
	// score: base - slope*averageRating. The resulting band sits strictly
	// below NewScore so reinforcement never displaces first exposure.
	ReinforcementBase  float64
	ReinforcementSlope float64

	// ReinforcementWindow is how long after a review a struggling problem
	// remains eligible for reinforcement.
	ReinforcementWindow time.Duration

	// ReinforcementThreshold is the average rating below which a recently
	// reviewed problem qualifies for reinforcement.
	ReinforcementThreshold float64

	// JitterRange is the half-width of the uniform randomization term
	// added to every score to break ties and vary ordering across
	// sessions. Set to zero in tests for deterministic scores.
	JitterRange float64

	// NewShare is the fraction of a batch session reserved for new
	// problems (minimum one slot if any new problems exist).
	NewShare float64

	// FailedShare caps the fraction of a batch's review slots given to
	// recently failed problems.
	FailedShare float64
}

// DefaultConfig returns the standard scheduler configuration.
func DefaultConfig() Config {
	return Config{
		NewScore:       100,
		DueBaseScore:   200,
		OverduePerHour: 10,
		OverdueCap:     500,
		FailedBoost:    300,

		ReinforcementBase:      50,
		ReinforcementSlope:     10,
		ReinforcementWindow:    24 * time.Hour,
		ReinforcementThreshold: 3.5,

		JitterRange: 20,

		NewShare:    0.25,
		FailedShare: 0.5,
	}
}

package srs

import (
	"time"

	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/domain"
)

// calculateNewEaseFactor determines the new easiness factor after a review.
//
// The easiness factor represents how quickly intervals grow after
// successful reviews. High ratings nudge it up by the configured bonus;
// every rating stage below fluent subtracts one penalty step, so low
// ratings pull it down. The result is clamped between
// params.MinEaseFactor and params.MaxEaseFactor, which keeps the factor
// strictly positive.
func calculateNewEaseFactor(currentEF float64, rating domain.Rating, params *Params) float64 {
	adjustment := params.EaseBonus - float64(domain.RatingFluent-rating)*params.EasePenaltyStep
	newEF := currentEF + adjustment

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}
	if newEF > params.MaxEaseFactor {
		newEF = params.MaxEaseFactor
	}
	return newEF
}

// calculateNewInterval determines the next review interval.
//
// Algorithm behavior:
//   - Failure ratings (0-2) reset the interval to the base table entry
//     for that rating, regardless of prior history. Failing a problem
//     always brings it back toward the short end.
//   - Success ratings (3-5) before graduation (fewer than
//     params.GraduationReviews consecutive successes going into this
//     review) use the base table directly, so early progress is gradual.
//   - Graduated success ratings grow the previous interval
//     multiplicatively by the easiness factor, floored at the base table
//     entry for the rating.
//   - The result is always clamped to [MinInterval, MaxInterval], so
//     repeated successes converge to, but never exceed, the maximum.
func calculateNewInterval(
	previous time.Duration,
	consecutiveCorrect int,
	easeFactor float64,
	rating domain.Rating,
	params *Params,
) time.Duration {
	base := params.BaseIntervals[rating]

	if rating.IsFailure() {
		return clampInterval(base, params)
	}

	if consecutiveCorrect < params.GraduationReviews {
		return clampInterval(base, params)
	}

	grown := time.Duration(float64(previous) * easeFactor)
	if grown < base {
		grown = base
	}
	return clampInterval(grown, params)
}

// clampInterval bounds an interval to [MinInterval, MaxInterval].
func clampInterval(d time.Duration, params *Params) time.Duration {
	if d < params.MinInterval {
		return params.MinInterval
	}
	if d > params.MaxInterval {
		return params.MaxInterval
	}
	return d
}

// calculateNextStats produces the post-review statistics for a problem.
//
// It follows the immutable update pattern: the input stats are never
// modified, a new ProblemStats is returned. When stats is nil (first
// review of the problem) a fresh record is created before applying the
// rating, which is how stats come to exist lazily on first submission.
//
// Side effects folded into the new stats: review count increments, last
// rating and last reviewed time update, the average rating is recomputed
// as the cumulative mean including the new rating, the consecutive
// success counter increments on success ratings and resets on failures,
// and the next review time is set to now plus the new interval.
func calculateNextStats(
	problemID uuid.UUID,
	stats *domain.ProblemStats,
	rating domain.Rating,
	now time.Time,
	params *Params,
) (*domain.ProblemStats, error) {
	if stats == nil {
		created, err := domain.NewProblemStats(problemID, now)
		if err != nil {
			return nil, err
		}
		stats = created
	}

	newStats := stats.Clone()

	newStats.ReviewCount++
	newStats.LastRating = rating
	newStats.LastReviewedAt = now

	// Cumulative mean over all ratings received, including this one.
	n := float64(newStats.ReviewCount)
	newStats.AverageRating = (stats.AverageRating*(n-1) + float64(rating)) / n

	newStats.EaseFactor = calculateNewEaseFactor(stats.EaseFactor, rating, params)

	if rating.IsFailure() {
		newStats.ConsecutiveCorrect = 0
	} else {
		newStats.ConsecutiveCorrect = stats.ConsecutiveCorrect + 1
	}

	newStats.Interval = calculateNewInterval(
		stats.Interval,
		stats.ConsecutiveCorrect,
		newStats.EaseFactor,
		rating,
		params,
	)

	newStats.NextReviewAt = now.Add(newStats.Interval)
	newStats.UpdatedAt = now

	return newStats, nil
}

package srs

import (
	"time"

	"github.com/svenhuster/spacecode/internal/domain"
)

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// Core limits for the easiness factor.
	MinEaseFactor float64
	MaxEaseFactor float64

	// Easiness factor update: newEF = ef + (EaseBonus - (5-rating)*EasePenaltyStep).
	// A fluent rating earns the full bonus; every stage below fluent costs
	// one penalty step, so low ratings pull the factor down.
	EaseBonus       float64
	EasePenaltyStep float64

	// BaseIntervals maps each rating to its base interval, strictly
	// increasing with rating.
	BaseIntervals map[domain.Rating]time.Duration

	// Interval clamp. Intervals never fall below MinInterval or grow
	// beyond MaxInterval regardless of the computed multiplier.
	MinInterval time.Duration
	MaxInterval time.Duration

	// GraduationReviews is the number of consecutive successful reviews
	// required before intervals grow multiplicatively with the easiness
	// factor. Earlier reviews use the base table directly.
	GraduationReviews int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: 1.3,
		MaxEaseFactor: 2.5,

		EaseBonus:       0.05,
		EasePenaltyStep: 0.03,

		BaseIntervals: map[domain.Rating]time.Duration{
			domain.RatingFailed:   1 * time.Hour,
			domain.RatingSolution: 3 * time.Hour,
			domain.RatingErrors:   6 * time.Hour,
			domain.RatingDebug:    24 * time.Hour,
			domain.RatingSolved:   48 * time.Hour,
			domain.RatingFluent:   72 * time.Hour,
		},

		MinInterval: 1 * time.Hour,
		MaxInterval: 168 * time.Hour, // 1 week

		GraduationReviews: 2,
	}
}

package domain

// Rating represents the outcome of a problem review on the 0-5 ordinal
// scale. Each value corresponds to a problem-solving stage: how far the
// learner got before needing help.
type Rating int

// Possible rating values, from total failure to fluent recall.
const (
	RatingFailed   Rating = 0 // could not make progress at all
	RatingSolution Rating = 1 // had to read the solution
	RatingErrors   Rating = 2 // solved with significant errors
	RatingDebug    Rating = 3 // solved after debugging
	RatingSolved   Rating = 4 // solved cleanly
	RatingFluent   Rating = 5 // solved fluently, no hesitation
)

// RatingSkipped marks a review event for a problem the user skipped
// rather than rated. Skipped events are recorded in the review log but
// never feed the scheduling algorithm.
const RatingSkipped Rating = -1

// IsValid reports whether the rating is within the 0-5 scale.
// RatingSkipped is deliberately not a valid scheduling rating.
func (r Rating) IsValid() bool {
	return r >= RatingFailed && r <= RatingFluent
}

// Validate returns ErrInvalidRating if the rating is outside the 0-5
// scale. Callers are expected to validate before submitting a rating, but
// the scheduling engine defends against invalid input regardless.
func (r Rating) Validate() error {
	if !r.IsValid() {
		return ErrInvalidRating
	}
	return nil
}

// Clamp forces the rating into the 0-5 scale.
func (r Rating) Clamp() Rating {
	if r < RatingFailed {
		return RatingFailed
	}
	if r > RatingFluent {
		return RatingFluent
	}
	return r
}

// IsFailure reports whether the rating indicates the learner struggled
// (failed outright, needed the solution, or made significant errors).
// Failure ratings reset scheduling progress.
func (r Rating) IsFailure() bool {
	return r >= RatingFailed && r <= RatingErrors
}

// Package srs implements the interval policy of the review scheduler: a
// pure state-transition function from (previous stats, rating) to the
// next review time and difficulty-tracking metadata.
package srs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/domain"
)

// Common errors.
var (
	ErrEmptyProblemID = errors.New("problem ID cannot be empty")
)

// Service defines the interface for interval policy operations.
type Service interface {
	// RecordRating computes new stats from a rating submission.
	//
	// stats may be nil for a problem that has never been reviewed; a
	// fresh record is created lazily in that case. Returns
	// domain.ErrInvalidRating, with no state produced, when the rating
	// is outside the 0-5 scale. The function performs no I/O;
	// persistence of the returned stats is the caller's responsibility.
	RecordRating(
		problemID uuid.UUID,
		stats *domain.ProblemStats,
		rating domain.Rating,
		now time.Time,
	) (*domain.ProblemStats, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new interval policy service with default
// parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a new interval policy service with custom
// parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

// RecordRating implements the Service interface.
func (s *defaultService) RecordRating(
	problemID uuid.UUID,
	stats *domain.ProblemStats,
	rating domain.Rating,
	now time.Time,
) (*domain.ProblemStats, error) {
	if problemID == uuid.Nil {
		return nil, ErrEmptyProblemID
	}
	if err := rating.Validate(); err != nil {
		return nil, err
	}

	return calculateNextStats(problemID, stats, rating, now, s.params)
}

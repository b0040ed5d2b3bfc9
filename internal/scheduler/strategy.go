package scheduler

import (
	"time"

	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/domain"
)

// Strategy selects the next problem to present during a session. The two
// implementations are interchangeable from the caller's point of view;
// which one a session uses is caller configuration, not a branch inside
// the selection code.
type Strategy interface {
	// NextProblem returns the next problem to present, or nil when the
	// session should end (no selectable problems, or budget exhausted).
	NextProblem(problems []*domain.Problem, now time.Time, remaining time.Duration) *domain.Problem
}

// ContinuousStrategy re-scores the full active set on every call and
// pops the top scorer. Because scores are recomputed after each rating,
// categories interleave naturally: a problem that just became overdue or
// newly reinforced competes immediately.
type ContinuousStrategy struct {
	engine *Engine
}

// NewContinuousStrategy creates the primary, dynamic selection strategy.
func NewContinuousStrategy(engine *Engine) *ContinuousStrategy {
	return &ContinuousStrategy{engine: engine}
}

// NextProblem implements Strategy.
func (s *ContinuousStrategy) NextProblem(problems []*domain.Problem, now time.Time, remaining time.Duration) *domain.Problem {
	return s.engine.SelectNext(problems, now, remaining)
}

// BatchStrategy is the legacy fixed-size mode: it composes the whole
// session up front with the ratio allocation and then serves it in
// order. Unlike the continuous strategy it holds the composed queue, so
// a BatchStrategy belongs to a single session.
type BatchStrategy struct {
	engine   *Engine
	size     int
	queue    []*domain.Problem
	composed bool
}

// NewBatchStrategy creates a legacy batch strategy for a session of the
// given target size.
func NewBatchStrategy(engine *Engine, size int) *BatchStrategy {
	return &BatchStrategy{engine: engine, size: size}
}

// NextProblem implements Strategy. The batch is composed on the first
// call; subsequent calls pop from the remaining queue.
func (s *BatchStrategy) NextProblem(problems []*domain.Problem, now time.Time, remaining time.Duration) *domain.Problem {
	if remaining <= 0 {
		return nil
	}

	if !s.composed {
		s.queue = s.engine.ComposeBatch(problems, now, s.size)
		s.composed = true
	}

	// Skip problems no longer in the active snapshot (reviewed earlier in
	// this session, or deactivated since composition).
	current := make(map[uuid.UUID]bool, len(problems))
	for _, p := range problems {
		if p.IsActive {
			current[p.ID] = true
		}
	}

	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		if current[next.ID] {
			return next
		}
	}
	return nil
}

package scheduler

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/svenhuster/spacecode/internal/domain"
)

// Engine scores and selects problems for practice sessions. It is
// stateless per call: every selection re-evaluates the full active set
// against a fresh snapshot, so a problem that just became overdue or
// newly reinforced is picked up immediately.
//
// The randomization source is injectable so tests can seed it; when rng
// is nil the engine falls back to the process-global generator, which is
// randomly seeded and safe for concurrent use.
type Engine struct {
	cfg Config
	rng *rand.Rand
}

// NewEngine creates a scheduling engine. Pass a seeded rng for
// deterministic selection in tests, or nil for production randomness.
func NewEngine(cfg Config, rng *rand.Rand) *Engine {
	return &Engine{cfg: cfg, rng: rng}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// jitter returns a uniform draw from [-JitterRange, +JitterRange].
func (e *Engine) jitter() float64 {
	if e.cfg.JitterRange == 0 {
		return 0
	}
	return (e.float64()*2 - 1) * e.cfg.JitterRange
}

func (e *Engine) float64() float64 {
	if e.rng != nil {
		return e.rng.Float64()
	}
	return rand.Float64()
}

func (e *Engine) shuffle(n int, swap func(i, j int)) {
	if e.rng != nil {
		e.rng.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}

// SelectNext returns the single highest-scoring selectable problem from
// the active set, or nil when nothing is selectable or the remaining
// session budget is exhausted. An empty active set is not an error;
// callers treat a nil result as "nothing to study".
func (e *Engine) SelectNext(problems []*domain.Problem, now time.Time, remaining time.Duration) *domain.Problem {
	if remaining <= 0 {
		return nil
	}

	var best *domain.Problem
	bestScore := math.Inf(-1)

	for _, p := range problems {
		if !p.IsActive {
			continue
		}
		category := Classify(p, now, e.cfg)
		if !category.Selectable() {
			continue
		}

		score := Score(p, category, now, e.cfg) + e.jitter()
		if score > bestScore {
			best = p
			bestScore = score
		}
	}

	return best
}

// ComposeBatch assembles a fixed-size session of up to targetCount
// problems using the legacy ratio allocation: a share of slots is
// reserved for new problems (chosen at random from the new pool), and
// the remainder goes to reviews in priority order - recently failed
// problems first, then overdue problems most-overdue first. Slots a
// category cannot fill spill over to new problems and finally to
// reinforcement, so an exhausted category never leaves gaps.
//
// Given identical inputs and a fixed rng seed the output ordering is
// identical.
func (e *Engine) ComposeBatch(problems []*domain.Problem, now time.Time, targetCount int) []*domain.Problem {
	if targetCount <= 0 {
		return nil
	}

	var (
		newPool       []*domain.Problem
		failed        []*domain.Problem
		overdue       []*domain.Problem
		reinforcement []*domain.Problem
	)

	for _, p := range problems {
		if !p.IsActive {
			continue
		}
		switch Classify(p, now, e.cfg) {
		case CategoryNew:
			newPool = append(newPool, p)
		case CategoryFailedRecent:
			failed = append(failed, p)
		case CategoryOverdue:
			overdue = append(overdue, p)
		case CategoryReinforcement:
			reinforcement = append(reinforcement, p)
		}
	}

	// Reserve slots for new problems; at least one if any exist.
	newSlots := 0
	if len(newPool) > 0 {
		newSlots = int(math.Ceil(e.cfg.NewShare * float64(targetCount)))
		if newSlots < 1 {
			newSlots = 1
		}
		if newSlots > targetCount {
			newSlots = targetCount
		}
	}
	reviewSlots := targetCount - newSlots

	selected := make([]*domain.Problem, 0, targetCount)

	// Recently failed problems take up to their share of review slots.
	failedSlots := int(float64(reviewSlots) * e.cfg.FailedShare)
	if failedSlots > len(failed) {
		failedSlots = len(failed)
	}
	selected = append(selected, failed[:failedSlots]...)

	// Overdue problems, most overdue first, fill the rest of the review
	// allocation.
	sort.SliceStable(overdue, func(i, j int) bool {
		return overdue[i].Stats.NextReviewAt.Before(overdue[j].Stats.NextReviewAt)
	})
	overdueSlots := reviewSlots - len(selected)
	if overdueSlots > len(overdue) {
		overdueSlots = len(overdue)
	}
	selected = append(selected, overdue[:overdueSlots]...)

	// New problems: the reserved share plus any review slots the due
	// categories could not fill, drawn at random from the pool.
	e.shuffle(len(newPool), func(i, j int) {
		newPool[i], newPool[j] = newPool[j], newPool[i]
	})
	newCount := newSlots + (reviewSlots - len(selected))
	if newCount > len(newPool) {
		newCount = len(newPool)
	}
	selected = append(selected, newPool[:newCount]...)

	// Reinforcement fills whatever is left, worst average rating first.
	sort.SliceStable(reinforcement, func(i, j int) bool {
		return reinforcement[i].Stats.AverageRating < reinforcement[j].Stats.AverageRating
	})
	for _, p := range reinforcement {
		if len(selected) >= targetCount {
			break
		}
		selected = append(selected, p)
	}

	return selected
}

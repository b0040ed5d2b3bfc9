package scheduler

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/domain"
)

// zeroJitterConfig disables randomization so selection tests can assert
// exact ordering.
func zeroJitterConfig() Config {
	cfg := DefaultConfig()
	cfg.JitterRange = 0
	return cfg
}

func TestSelectNextPicksHighestScore(t *testing.T) {
	t.Parallel() // Enable parallel execution

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	engine := NewEngine(zeroJitterConfig(), nil)

	newProblem := newTestProblem(nil)
	overdueProblem := newTestProblem(statsWith(now.Add(-time.Hour), now.Add(-25*time.Hour), domain.RatingSolved, 4.0))
	failedProblem := newTestProblem(statsWith(now.Add(-time.Hour), now.Add(-25*time.Hour), domain.RatingFailed, 1.5))
	reinforcementProblem := newTestProblem(statsWith(now.Add(6*time.Hour), now.Add(-2*time.Hour), domain.RatingDebug, 2.0))

	problems := []*domain.Problem{reinforcementProblem, newProblem, overdueProblem, failedProblem}

	got := engine.SelectNext(problems, now, time.Hour)
	if got == nil {
		t.Fatal("Expected a selection, got nil")
	}
	if got.ID != failedProblem.ID {
		t.Errorf("Expected the recently failed problem, got %s", got.ID)
	}
}

func TestSelectNextSkipsDormantAndInactive(t *testing.T) {
	t.Parallel() // Enable parallel execution

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	engine := NewEngine(zeroJitterConfig(), nil)

	// Not due, last reviewed two days ago with a good average: dormant.
	dormant := newTestProblem(statsWith(now.Add(12*time.Hour), now.Add(-48*time.Hour), domain.RatingSolved, 4.5))

	inactive := newTestProblem(nil)
	inactive.IsActive = false

	if got := engine.SelectNext([]*domain.Problem{dormant, inactive}, now, time.Hour); got != nil {
		t.Errorf("Expected nil when only dormant and inactive problems remain, got %s", got.ID)
	}
}

func TestSelectNextExhaustedBudget(t *testing.T) {
	t.Parallel() // Enable parallel execution

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	engine := NewEngine(zeroJitterConfig(), nil)

	problems := []*domain.Problem{newTestProblem(nil)}

	if got := engine.SelectNext(problems, now, 0); got != nil {
		t.Errorf("Expected nil with zero remaining budget, got %s", got.ID)
	}
	if got := engine.SelectNext(problems, now, -time.Minute); got != nil {
		t.Errorf("Expected nil with negative remaining budget, got %s", got.ID)
	}
}

func TestSelectNextEmptySet(t *testing.T) {
	t.Parallel() // Enable parallel execution

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	engine := NewEngine(DefaultConfig(), rand.New(rand.NewSource(1)))

	if got := engine.SelectNext(nil, now, time.Hour); got != nil {
		t.Errorf("Expected nil for an empty problem set, got %s", got.ID)
	}
}

func TestSelectNextNeverReturnsDormant(t *testing.T) {
	t.Parallel() // Enable parallel execution

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	engine := NewEngine(DefaultConfig(), rand.New(rand.NewSource(42)))

	// One selectable problem among many dormant ones; with full jitter the
	// selectable one must still win every draw, since dormant problems are
	// filtered before scoring.
	selectable := newTestProblem(nil)
	problems := []*domain.Problem{selectable}
	for i := 0; i < 20; i++ {
		problems = append(problems, newTestProblem(statsWith(now.Add(12*time.Hour), now.Add(-48*time.Hour), domain.RatingSolved, 4.5)))
	}

	for i := 0; i < 100; i++ {
		got := engine.SelectNext(problems, now, time.Hour)
		if got == nil || got.ID != selectable.ID {
			t.Fatalf("Draw %d: expected the only selectable problem, got %v", i, got)
		}
	}
}

func TestJitterBounds(t *testing.T) {
	t.Parallel() // Enable parallel execution

	engine := NewEngine(DefaultConfig(), rand.New(rand.NewSource(7)))

	for i := 0; i < 1000; i++ {
		j := engine.jitter()
		if j < -20 || j > 20 {
			t.Fatalf("Jitter %f outside [-20, 20]", j)
		}
	}
}

func TestComposeBatchRatioAllocation(t *testing.T) {
	t.Parallel() // Enable parallel execution

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	engine := NewEngine(zeroJitterConfig(), rand.New(rand.NewSource(1)))

	var problems []*domain.Problem
	addProblems := func(n int, build func() *domain.Problem) []*domain.Problem {
		var out []*domain.Problem
		for i := 0; i < n; i++ {
			p := build()
			out = append(out, p)
			problems = append(problems, p)
		}
		return out
	}

	newPool := addProblems(10, func() *domain.Problem {
		return newTestProblem(nil)
	})
	failedPool := addProblems(10, func() *domain.Problem {
		return newTestProblem(statsWith(now.Add(-time.Hour), now.Add(-25*time.Hour), domain.RatingFailed, 1.5))
	})
	overduePool := addProblems(10, func() *domain.Problem {
		return newTestProblem(statsWith(now.Add(-2*time.Hour), now.Add(-26*time.Hour), domain.RatingSolved, 4.0))
	})

	membership := func(pool []*domain.Problem) map[uuid.UUID]bool {
		m := make(map[uuid.UUID]bool, len(pool))
		for _, p := range pool {
			m[p.ID] = true
		}
		return m
	}
	isNew := membership(newPool)
	isFailed := membership(failedPool)
	isOverdue := membership(overduePool)

	batch := engine.ComposeBatch(problems, now, 20)
	if len(batch) != 20 {
		t.Fatalf("Expected 20 problems, got %d", len(batch))
	}

	counts := map[string]int{}
	for _, p := range batch {
		switch {
		case isNew[p.ID]:
			counts["new"]++
		case isFailed[p.ID]:
			counts["failed"]++
		case isOverdue[p.ID]:
			counts["overdue"]++
		}
	}

	// 20 slots: ceil(0.25*20)=5 new, 15 review slots, int(15*0.5)=7 failed,
	// 8 overdue.
	if counts["new"] != 5 {
		t.Errorf("Expected 5 new problems, got %d", counts["new"])
	}
	if counts["failed"] != 7 {
		t.Errorf("Expected 7 failed problems, got %d", counts["failed"])
	}
	if counts["overdue"] != 8 {
		t.Errorf("Expected 8 overdue problems, got %d", counts["overdue"])
	}
}

func TestComposeBatchSpillOver(t *testing.T) {
	t.Parallel() // Enable parallel execution

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	engine := NewEngine(zeroJitterConfig(), rand.New(rand.NewSource(1)))

	// No failed or overdue problems at all: review slots spill to new,
	// then reinforcement tops up what the new pool cannot cover.
	var problems []*domain.Problem
	for i := 0; i < 4; i++ {
		problems = append(problems, newTestProblem(nil))
	}
	for i := 0; i < 10; i++ {
		problems = append(problems, newTestProblem(statsWith(now.Add(6*time.Hour), now.Add(-2*time.Hour), domain.RatingDebug, 2.0)))
	}

	batch := engine.ComposeBatch(problems, now, 10)
	if len(batch) != 10 {
		t.Fatalf("Expected a full batch of 10, got %d", len(batch))
	}

	newCount := 0
	for _, p := range batch {
		if p.Stats == nil {
			newCount++
		}
	}
	if newCount != 4 {
		t.Errorf("Expected all 4 new problems after spill-over, got %d", newCount)
	}
}

func TestComposeBatchOverdueOrdering(t *testing.T) {
	t.Parallel() // Enable parallel execution

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	engine := NewEngine(zeroJitterConfig(), rand.New(rand.NewSource(1)))

	slightlyOverdue := newTestProblem(statsWith(now.Add(-time.Hour), now.Add(-25*time.Hour), domain.RatingSolved, 4.0))
	veryOverdue := newTestProblem(statsWith(now.Add(-72*time.Hour), now.Add(-96*time.Hour), domain.RatingSolved, 4.0))

	batch := engine.ComposeBatch([]*domain.Problem{slightlyOverdue, veryOverdue}, now, 2)
	if len(batch) != 2 {
		t.Fatalf("Expected 2 problems, got %d", len(batch))
	}
	if batch[0].ID != veryOverdue.ID {
		t.Errorf("Expected the most overdue problem first, got %s", batch[0].ID)
	}
}

func TestComposeBatchDeterministicWithFixedSeed(t *testing.T) {
	t.Parallel() // Enable parallel execution

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	var problems []*domain.Problem
	for i := 0; i < 8; i++ {
		problems = append(problems, newTestProblem(nil))
	}
	for i := 0; i < 8; i++ {
		problems = append(problems, newTestProblem(statsWith(now.Add(-time.Duration(i+1)*time.Hour), now.Add(-30*time.Hour), domain.RatingSolved, 4.0)))
	}

	compose := func() []uuid.UUID {
		engine := NewEngine(DefaultConfig(), rand.New(rand.NewSource(99)))
		batch := engine.ComposeBatch(problems, now, 10)
		ids := make([]uuid.UUID, len(batch))
		for i, p := range batch {
			ids[i] = p.ID
		}
		return ids
	}

	first := compose()
	second := compose()
	if len(first) != len(second) {
		t.Fatalf("Batch sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Position %d differs across identical composes: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestComposeBatchZeroTarget(t *testing.T) {
	t.Parallel() // Enable parallel execution

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	engine := NewEngine(zeroJitterConfig(), nil)

	if batch := engine.ComposeBatch([]*domain.Problem{newTestProblem(nil)}, now, 0); batch != nil {
		t.Errorf("Expected nil batch for zero target, got %d problems", len(batch))
	}
}

func TestComposeBatchSmallerPoolThanTarget(t *testing.T) {
	t.Parallel() // Enable parallel execution

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	engine := NewEngine(zeroJitterConfig(), rand.New(rand.NewSource(1)))

	problems := []*domain.Problem{
		newTestProblem(nil),
		newTestProblem(statsWith(now.Add(-time.Hour), now.Add(-25*time.Hour), domain.RatingSolved, 4.0)),
	}

	batch := engine.ComposeBatch(problems, now, 20)
	if len(batch) != 2 {
		t.Errorf("Expected the whole pool when smaller than the target, got %d", len(batch))
	}
}

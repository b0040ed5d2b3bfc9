package service

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/domain"
	"github.com/svenhuster/spacecode/internal/platform/logger"
	"github.com/svenhuster/spacecode/internal/store"
)

// testLogger returns a debug-level logger whose output stays in a buffer.
func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	log, _ := logger.GetTestLogger(t)
	return log
}

// In-memory store fakes. WithTx returns the fake itself so transactional
// code paths run unchanged against them; the test harness wires runTx to
// invoke the function directly with a nil transaction.

type fakeProblemStore struct {
	problems map[uuid.UUID]*domain.Problem
}

func newFakeProblemStore() *fakeProblemStore {
	return &fakeProblemStore{problems: make(map[uuid.UUID]*domain.Problem)}
}

var _ store.ProblemStore = (*fakeProblemStore)(nil)

func (f *fakeProblemStore) Create(ctx context.Context, problem *domain.Problem) error {
	if err := problem.Validate(); err != nil {
		return err
	}
	for _, p := range f.problems {
		if p.URL == problem.URL {
			return store.ErrProblemURLExists
		}
	}
	f.problems[problem.ID] = problem
	return nil
}

func (f *fakeProblemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Problem, error) {
	p, ok := f.problems[id]
	if !ok {
		return nil, store.ErrProblemNotFound
	}
	return p, nil
}

func (f *fakeProblemStore) GetByURL(ctx context.Context, url string) (*domain.Problem, error) {
	for _, p := range f.problems {
		if p.URL == url {
			return p, nil
		}
	}
	return nil, store.ErrProblemNotFound
}

func (f *fakeProblemStore) List(ctx context.Context, includeInactive bool) ([]*domain.Problem, error) {
	var out []*domain.Problem
	for _, p := range f.problems {
		if includeInactive || p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeProblemStore) Update(ctx context.Context, problem *domain.Problem) error {
	if _, ok := f.problems[problem.ID]; !ok {
		return store.ErrProblemNotFound
	}
	f.problems[problem.ID] = problem
	return nil
}

func (f *fakeProblemStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.problems[id]; !ok {
		return store.ErrProblemNotFound
	}
	delete(f.problems, id)
	return nil
}

func (f *fakeProblemStore) WithTx(tx *sql.Tx) store.ProblemStore { return f }

type fakeStatsStore struct {
	stats map[uuid.UUID]*domain.ProblemStats
}

func newFakeStatsStore() *fakeStatsStore {
	return &fakeStatsStore{stats: make(map[uuid.UUID]*domain.ProblemStats)}
}

var _ store.ProblemStatsStore = (*fakeStatsStore)(nil)

func (f *fakeStatsStore) Get(ctx context.Context, problemID uuid.UUID) (*domain.ProblemStats, error) {
	s, ok := f.stats[problemID]
	if !ok {
		return nil, store.ErrProblemStatsNotFound
	}
	return s.Clone(), nil
}

func (f *fakeStatsStore) GetForUpdate(ctx context.Context, problemID uuid.UUID) (*domain.ProblemStats, error) {
	return f.Get(ctx, problemID)
}

func (f *fakeStatsStore) Upsert(ctx context.Context, stats *domain.ProblemStats) error {
	if err := stats.Validate(); err != nil {
		return err
	}
	f.stats[stats.ProblemID] = stats.Clone()
	return nil
}

func (f *fakeStatsStore) Delete(ctx context.Context, problemID uuid.UUID) error {
	if _, ok := f.stats[problemID]; !ok {
		return store.ErrProblemStatsNotFound
	}
	delete(f.stats, problemID)
	return nil
}

func (f *fakeStatsStore) WithTx(tx *sql.Tx) store.ProblemStatsStore { return f }

type fakeReviewStore struct {
	reviews []*domain.Review
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{}
}

var _ store.ReviewStore = (*fakeReviewStore)(nil)

func (f *fakeReviewStore) Create(ctx context.Context, review *domain.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}
	f.reviews = append(f.reviews, review)
	return nil
}

func (f *fakeReviewStore) ListByProblem(ctx context.Context, problemID uuid.UUID, limit int) ([]*domain.Review, error) {
	var out []*domain.Review
	for i := len(f.reviews) - 1; i >= 0; i-- {
		if f.reviews[i].ProblemID == problemID {
			out = append(out, f.reviews[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeReviewStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Review, error) {
	var out []*domain.Review
	for _, r := range f.reviews {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviewStore) CountSince(ctx context.Context, since time.Time) (int, error) {
	count := 0
	for _, r := range f.reviews {
		if !r.ReviewedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeReviewStore) WithTx(tx *sql.Tx) store.ReviewStore { return f }

type fakeSessionStore struct {
	sessions map[uuid.UUID]*domain.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*domain.Session)}
}

var _ store.SessionStore = (*fakeSessionStore)(nil)

func (f *fakeSessionStore) Create(ctx context.Context, session *domain.Session) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessionStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeSessionStore) GetCurrent(ctx context.Context) (*domain.Session, error) {
	var current *domain.Session
	for _, s := range f.sessions {
		if s.Status != domain.SessionActive && s.Status != domain.SessionPaused {
			continue
		}
		if current == nil || s.StartedAt.After(current.StartedAt) {
			current = s
		}
	}
	if current == nil {
		return nil, store.ErrSessionNotFound
	}
	return current, nil
}

func (f *fakeSessionStore) Update(ctx context.Context, session *domain.Session) error {
	if _, ok := f.sessions[session.ID]; !ok {
		return store.ErrSessionNotFound
	}
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	var expired int64
	for _, s := range f.sessions {
		if !s.Terminal() && s.IsExpired(now) {
			if err := s.Expire(now); err != nil {
				return expired, err
			}
			expired++
		}
	}
	return expired, nil
}

func (f *fakeSessionStore) WithTx(tx *sql.Tx) store.SessionStore { return f }

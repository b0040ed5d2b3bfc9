package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/domain"
	"github.com/svenhuster/spacecode/internal/platform/logger"
	"github.com/svenhuster/spacecode/internal/scheduler"
	"github.com/svenhuster/spacecode/internal/store"
)

// StudyOverview is the dashboard aggregate: scheduling state across the
// catalog plus review activity for the current day.
type StudyOverview struct {
	*scheduler.StudySummary

	ReviewsToday int `json:"reviews_today"`
}

// StatsService provides study statistics over the problem catalog and
// review log.
type StatsService interface {
	// GetStudyOverview computes the dashboard summary from a single
	// consistent snapshot of the active problem set.
	GetStudyOverview(ctx context.Context) (*StudyOverview, error)

	// GetReviewHistory returns the most recent reviews for a problem,
	// newest first.
	GetReviewHistory(ctx context.Context, problemID uuid.UUID, limit int) ([]*domain.Review, error)
}

// Verify interface compliance at compile time
var _ StatsService = (*statsServiceImpl)(nil)

type statsServiceImpl struct {
	problemStore store.ProblemStore
	reviewStore  store.ReviewStore
	logger       *slog.Logger
	now          func() time.Time
}

// NewStatsService creates a new StatsService implementation.
func NewStatsService(
	problemStore store.ProblemStore,
	reviewStore store.ReviewStore,
	logger *slog.Logger,
) StatsService {
	// Validate inputs
	if problemStore == nil {
		panic("problemStore cannot be nil")
	}
	if reviewStore == nil {
		panic("reviewStore cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &statsServiceImpl{
		problemStore: problemStore,
		reviewStore:  reviewStore,
		logger:       logger.With(slog.String("component", "stats_service")),
		now:          time.Now,
	}
}

// GetStudyOverview implements StatsService.GetStudyOverview.
func (s *statsServiceImpl) GetStudyOverview(ctx context.Context) (*StudyOverview, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now().UTC()

	problems, err := s.problemStore.List(ctx, false)
	if err != nil {
		return nil, NewServiceError("study_overview", "failed to load problems", err)
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	reviewsToday, err := s.reviewStore.CountSince(ctx, midnight)
	if err != nil {
		return nil, NewServiceError("study_overview", "failed to count reviews", err)
	}

	overview := &StudyOverview{
		StudySummary: scheduler.Summarize(problems, now),
		ReviewsToday: reviewsToday,
	}

	log.Debug("study overview computed",
		slog.Int("total_problems", overview.TotalProblems),
		slog.Int("due_now", overview.DueNow))
	return overview, nil
}

// GetReviewHistory implements StatsService.GetReviewHistory.
func (s *statsServiceImpl) GetReviewHistory(ctx context.Context, problemID uuid.UUID, limit int) ([]*domain.Review, error) {
	reviews, err := s.reviewStore.ListByProblem(ctx, problemID, limit)
	if err != nil {
		return nil, NewServiceError("review_history", "failed to load reviews", err)
	}
	return reviews, nil
}

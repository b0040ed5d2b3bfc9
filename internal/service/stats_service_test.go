package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svenhuster/spacecode/internal/domain"
)

func seedReview(t *testing.T, reviews *fakeReviewStore, problemID uuid.UUID, rating domain.Rating, reviewedAt time.Time) {
	t.Helper()

	review, err := domain.NewReview(problemID, uuid.Nil, rating, 2*time.Minute, reviewedAt)
	require.NoError(t, err)
	require.NoError(t, reviews.Create(context.Background(), review))
}

func TestGetStudyOverview(t *testing.T) {
	problems := newFakeProblemStore()
	reviews := newFakeReviewStore()
	svc := NewStatsService(problems, reviews, testLogger(t))

	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	impl := svc.(*statsServiceImpl)
	impl.now = func() time.Time { return now }

	ctx := context.Background()

	// One due problem, one scheduled out, one inactive (excluded).
	due, err := domain.NewProblem("https://leetcode.com/problems/two-sum/")
	require.NoError(t, err)
	require.NoError(t, problems.Create(ctx, due))

	scheduled, err := domain.NewProblem("https://leetcode.com/problems/three-sum/")
	require.NoError(t, err)
	require.NoError(t, problems.Create(ctx, scheduled))
	stats, err := domain.NewProblemStats(scheduled.ID, now.Add(-24*time.Hour))
	require.NoError(t, err)
	stats.NextReviewAt = now.Add(48 * time.Hour)
	stats.LastReviewedAt = now.Add(-24 * time.Hour)
	stats.LastRating = domain.RatingSolved
	stats.AverageRating = 4.0
	stats.ReviewCount = 2
	scheduled.Stats = stats

	hidden, err := domain.NewProblem("https://leetcode.com/problems/four-sum/")
	require.NoError(t, err)
	hidden.IsActive = false
	require.NoError(t, problems.Create(ctx, hidden))

	// Two reviews today, one yesterday.
	seedReview(t, reviews, scheduled.ID, domain.RatingSolved, now.Add(-2*time.Hour))
	seedReview(t, reviews, scheduled.ID, domain.RatingSolved, now.Add(-5*time.Hour))
	seedReview(t, reviews, due.ID, domain.RatingErrors, now.Add(-26*time.Hour))

	overview, err := svc.GetStudyOverview(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, overview.TotalProblems)
	assert.Equal(t, 1, overview.DueNow, "never-reviewed problems count as due")
	assert.Equal(t, 2, overview.ReviewsToday)
}

func TestGetReviewHistory(t *testing.T) {
	problems := newFakeProblemStore()
	reviews := newFakeReviewStore()
	svc := NewStatsService(problems, reviews, testLogger(t))

	problemID := uuid.New()
	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedReview(t, reviews, problemID, domain.RatingSolved, base.Add(time.Duration(i)*time.Hour))
	}
	seedReview(t, reviews, uuid.New(), domain.RatingFailed, base)

	history, err := svc.GetReviewHistory(context.Background(), problemID, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, base.Add(4*time.Hour), history[0].ReviewedAt, "newest first")
	assert.Equal(t, base.Add(2*time.Hour), history[2].ReviewedAt)

	all, err := svc.GetReviewHistory(context.Background(), problemID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/domain"
	"github.com/svenhuster/spacecode/internal/platform/logger"
	"github.com/svenhuster/spacecode/internal/store"
)

// ProblemUpdate carries the editable metadata fields of a problem.
// Nil pointers mean "leave unchanged".
type ProblemUpdate struct {
	Title      *string
	Number     *int
	Difficulty *string
	Tags       []string
	Notes      *string
	IsActive   *bool
}

// ProblemService provides problem catalog operations.
type ProblemService interface {
	// CreateProblem adds a problem to the catalog from its URL. The slug is
	// extracted from the URL. If the URL is already tracked but the problem
	// was deactivated, it is reactivated instead of duplicated; a tracked
	// active URL returns ErrProblemExists.
	CreateProblem(ctx context.Context, url string) (*domain.Problem, error)

	// GetProblem retrieves a problem with its scheduling stats.
	// Returns ErrProblemNotFound if the problem does not exist.
	GetProblem(ctx context.Context, id uuid.UUID) (*domain.Problem, error)

	// ListProblems retrieves the problem catalog with scheduling stats.
	ListProblems(ctx context.Context, includeInactive bool) ([]*domain.Problem, error)

	// UpdateProblem applies metadata changes to a problem.
	// Returns ErrProblemNotFound if the problem does not exist.
	UpdateProblem(ctx context.Context, id uuid.UUID, update ProblemUpdate) (*domain.Problem, error)

	// DeleteProblem removes a problem and, through cascade, its stats and reviews.
	// Returns ErrProblemNotFound if the problem does not exist.
	DeleteProblem(ctx context.Context, id uuid.UUID) error

	// ResetProgress deletes a problem's scheduling stats, returning it to
	// the never-reviewed state. The review log is kept.
	// Returns ErrProblemNotFound if the problem does not exist.
	ResetProgress(ctx context.Context, id uuid.UUID) error
}

// Verify interface compliance at compile time
var _ ProblemService = (*problemServiceImpl)(nil)

type problemServiceImpl struct {
	problemStore store.ProblemStore
	statsStore   store.ProblemStatsStore
	logger       *slog.Logger
	now          func() time.Time
}

// NewProblemService creates a new ProblemService implementation.
func NewProblemService(
	problemStore store.ProblemStore,
	statsStore store.ProblemStatsStore,
	logger *slog.Logger,
) ProblemService {
	// Validate inputs
	if problemStore == nil {
		panic("problemStore cannot be nil")
	}
	if statsStore == nil {
		panic("statsStore cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &problemServiceImpl{
		problemStore: problemStore,
		statsStore:   statsStore,
		logger:       logger.With(slog.String("component", "problem_service")),
		now:          time.Now,
	}
}

// CreateProblem implements ProblemService.CreateProblem.
func (s *problemServiceImpl) CreateProblem(ctx context.Context, url string) (*domain.Problem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	existing, err := s.problemStore.GetByURL(ctx, url)
	if err != nil && !errors.Is(err, store.ErrProblemNotFound) {
		return nil, NewServiceError("create_problem", "failed to check for existing problem", err)
	}

	if existing != nil {
		if existing.IsActive {
			log.Debug("problem already tracked",
				slog.String("problem_id", existing.ID.String()),
				slog.String("url", url))
			return nil, ErrProblemExists
		}

		// Deactivated problems come back with their history intact.
		existing.IsActive = true
		if err := s.problemStore.Update(ctx, existing); err != nil {
			return nil, NewServiceError("create_problem", "failed to reactivate problem", err)
		}
		log.Info("problem reactivated",
			slog.String("problem_id", existing.ID.String()),
			slog.String("slug", existing.Slug))
		return existing, nil
	}

	problem, err := domain.NewProblem(url)
	if err != nil {
		return nil, err
	}

	if err := s.problemStore.Create(ctx, problem); err != nil {
		if errors.Is(err, store.ErrProblemURLExists) {
			return nil, ErrProblemExists
		}
		return nil, NewServiceError("create_problem", "failed to create problem", err)
	}

	log.Info("problem added to catalog",
		slog.String("problem_id", problem.ID.String()),
		slog.String("slug", problem.Slug))
	return problem, nil
}

// GetProblem implements ProblemService.GetProblem.
func (s *problemServiceImpl) GetProblem(ctx context.Context, id uuid.UUID) (*domain.Problem, error) {
	problem, err := s.problemStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrProblemNotFound) {
			return nil, ErrProblemNotFound
		}
		return nil, NewServiceError("get_problem", "failed to get problem", err)
	}
	return problem, nil
}

// ListProblems implements ProblemService.ListProblems.
func (s *problemServiceImpl) ListProblems(ctx context.Context, includeInactive bool) ([]*domain.Problem, error) {
	problems, err := s.problemStore.List(ctx, includeInactive)
	if err != nil {
		return nil, NewServiceError("list_problems", "failed to list problems", err)
	}
	return problems, nil
}

// UpdateProblem implements ProblemService.UpdateProblem.
func (s *problemServiceImpl) UpdateProblem(ctx context.Context, id uuid.UUID, update ProblemUpdate) (*domain.Problem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	problem, err := s.problemStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrProblemNotFound) {
			return nil, ErrProblemNotFound
		}
		return nil, NewServiceError("update_problem", "failed to get problem", err)
	}

	if update.Title != nil {
		problem.Title = *update.Title
	}
	if update.Number != nil {
		problem.Number = *update.Number
	}
	if update.Difficulty != nil {
		problem.Difficulty = *update.Difficulty
	}
	if update.Tags != nil {
		problem.Tags = update.Tags
	}
	if update.Notes != nil {
		problem.Notes = *update.Notes
	}
	if update.IsActive != nil {
		problem.IsActive = *update.IsActive
	}

	if err := s.problemStore.Update(ctx, problem); err != nil {
		if errors.Is(err, store.ErrProblemNotFound) {
			return nil, ErrProblemNotFound
		}
		return nil, NewServiceError("update_problem", "failed to update problem", err)
	}

	log.Info("problem updated", slog.String("problem_id", id.String()))
	return problem, nil
}

// DeleteProblem implements ProblemService.DeleteProblem.
func (s *problemServiceImpl) DeleteProblem(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.problemStore.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return ErrProblemNotFound
		}
		return NewServiceError("delete_problem", "failed to delete problem", err)
	}

	log.Info("problem removed from catalog", slog.String("problem_id", id.String()))
	return nil
}

// ResetProgress implements ProblemService.ResetProgress.
func (s *problemServiceImpl) ResetProgress(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Verify the problem exists so a reset on an unknown ID is reported as
	// a missing problem, not missing stats.
	if _, err := s.problemStore.GetByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrProblemNotFound) {
			return ErrProblemNotFound
		}
		return NewServiceError("reset_progress", "failed to get problem", err)
	}

	if err := s.statsStore.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			// Never reviewed; nothing to reset.
			return nil
		}
		return NewServiceError("reset_progress", fmt.Sprintf("failed to reset stats for problem %s", id), err)
	}

	log.Info("problem progress reset", slog.String("problem_id", id.String()))
	return nil
}

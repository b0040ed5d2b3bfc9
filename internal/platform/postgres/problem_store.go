package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/domain"
	"github.com/svenhuster/spacecode/internal/platform/logger"
	"github.com/svenhuster/spacecode/internal/store"
)

// PostgresProblemStore implements the store.ProblemStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProblemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProblemStore creates a new PostgreSQL implementation of the ProblemStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProblemStore(db store.DBTX, logger *slog.Logger) *PostgresProblemStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProblemStore{
		db:     db,
		logger: logger.With(slog.String("component", "problem_store")),
	}
}

// Ensure PostgresProblemStore implements store.ProblemStore interface
var _ store.ProblemStore = (*PostgresProblemStore)(nil)

// problemColumns is the column list shared by every problem query. Stats
// columns come from a LEFT JOIN so never-reviewed problems scan with NULLs.
const problemColumns = `
	p.id, p.url, p.slug, p.title, p.number, p.difficulty, p.tags,
	p.description, p.notes, p.is_active, p.created_at, p.updated_at,
	s.problem_id, s.ease_factor, s.interval_seconds, s.consecutive_correct,
	s.next_review_at, s.last_rating, s.last_reviewed_at, s.average_rating,
	s.review_count, s.created_at, s.updated_at
`

// Create implements store.ProblemStore.Create
// It saves a new problem to the database, handling domain validation.
// Returns store.ErrProblemURLExists if a problem with the same URL already exists.
func (s *PostgresProblemStore) Create(ctx context.Context, problem *domain.Problem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := problem.Validate(); err != nil {
		log.Warn("problem validation failed during create",
			slog.String("error", err.Error()),
			slog.String("problem_id", problem.ID.String()))
		return err
	}

	tags, err := json.Marshal(problem.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO problems (id, url, slug, title, number, difficulty, tags,
			description, notes, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		problem.ID,
		problem.URL,
		problem.Slug,
		problem.Title,
		problem.Number,
		problem.Difficulty,
		tags,
		problem.Description,
		problem.Notes,
		problem.IsActive,
		problem.CreatedAt,
		problem.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate problem URL",
				slog.String("problem_id", problem.ID.String()),
				slog.String("url", problem.URL))
			return fmt.Errorf("%w: %v", store.ErrProblemURLExists, err)
		}

		log.Error("failed to create problem",
			slog.String("error", err.Error()),
			slog.String("problem_id", problem.ID.String()))
		return MapError(err)
	}

	log.Info("problem created successfully",
		slog.String("problem_id", problem.ID.String()),
		slog.String("slug", problem.Slug))
	return nil
}

// GetByID implements store.ProblemStore.GetByID
// Returns store.ErrProblemNotFound if the problem does not exist.
func (s *PostgresProblemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Problem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + problemColumns + `
		FROM problems p
		LEFT JOIN problem_stats s ON s.problem_id = p.id
		WHERE p.id = $1
	`

	problem, err := scanProblem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("problem not found", slog.String("problem_id", id.String()))
			return nil, store.ErrProblemNotFound
		}
		log.Error("failed to get problem by ID",
			slog.String("error", err.Error()),
			slog.String("problem_id", id.String()))
		return nil, MapError(err)
	}

	return problem, nil
}

// GetByURL implements store.ProblemStore.GetByURL
// Returns store.ErrProblemNotFound if the problem does not exist.
func (s *PostgresProblemStore) GetByURL(ctx context.Context, url string) (*domain.Problem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + problemColumns + `
		FROM problems p
		LEFT JOIN problem_stats s ON s.problem_id = p.id
		WHERE p.url = $1
	`

	problem, err := scanProblem(s.db.QueryRowContext(ctx, query, url))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("problem not found by URL", slog.String("url", url))
			return nil, store.ErrProblemNotFound
		}
		log.Error("failed to get problem by URL",
			slog.String("error", err.Error()),
			slog.String("url", url))
		return nil, MapError(err)
	}

	return problem, nil
}

// List implements store.ProblemStore.List
func (s *PostgresProblemStore) List(ctx context.Context, includeInactive bool) ([]*domain.Problem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + problemColumns + `
		FROM problems p
		LEFT JOIN problem_stats s ON s.problem_id = p.id
	`
	if !includeInactive {
		query += ` WHERE p.is_active`
	}
	query += ` ORDER BY p.created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list problems", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var problems []*domain.Problem
	for rows.Next() {
		problem, err := scanProblem(rows)
		if err != nil {
			log.Error("failed to scan problem row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		problems = append(problems, problem)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return problems, nil
}

// Update implements store.ProblemStore.Update
// Returns store.ErrProblemNotFound if the problem does not exist.
func (s *PostgresProblemStore) Update(ctx context.Context, problem *domain.Problem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := problem.Validate(); err != nil {
		log.Warn("problem validation failed during update",
			slog.String("error", err.Error()),
			slog.String("problem_id", problem.ID.String()))
		return err
	}

	tags, err := json.Marshal(problem.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	problem.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE problems
		SET url = $1, slug = $2, title = $3, number = $4, difficulty = $5,
			tags = $6, description = $7, notes = $8, is_active = $9, updated_at = $10
		WHERE id = $11
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		problem.URL,
		problem.Slug,
		problem.Title,
		problem.Number,
		problem.Difficulty,
		tags,
		problem.Description,
		problem.Notes,
		problem.IsActive,
		problem.UpdatedAt,
		problem.ID,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrProblemURLExists, err)
		}
		log.Error("failed to update problem",
			slog.String("error", err.Error()),
			slog.String("problem_id", problem.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "problem"); err != nil {
		return err
	}

	log.Info("problem updated successfully",
		slog.String("problem_id", problem.ID.String()))
	return nil
}

// Delete implements store.ProblemStore.Delete
// Returns store.ErrProblemNotFound if the problem does not exist.
// Associated stats and reviews are removed by ON DELETE CASCADE constraints.
func (s *PostgresProblemStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM problems WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete problem",
			slog.String("error", err.Error()),
			slog.String("problem_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "problem"); err != nil {
		return err
	}

	log.Info("problem deleted successfully", slog.String("problem_id", id.String()))
	return nil
}

// WithTx implements store.ProblemStore.WithTx
// It returns a new store instance that uses the provided transaction.
func (s *PostgresProblemStore) WithTx(tx *sql.Tx) store.ProblemStore {
	return &PostgresProblemStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProblem scans a joined problem row. The stats columns are nullable;
// a NULL stats primary key means the problem has never been reviewed and
// its Stats field is left nil.
func scanProblem(row rowScanner) (*domain.Problem, error) {
	var (
		problem domain.Problem
		tags    []byte

		statsID         uuid.NullUUID
		easeFactor      sql.NullFloat64
		intervalSeconds sql.NullInt64
		consecutive     sql.NullInt32
		nextReviewAt    sql.NullTime
		lastRating      sql.NullInt32
		lastReviewedAt  sql.NullTime
		averageRating   sql.NullFloat64
		reviewCount     sql.NullInt32
		statsCreatedAt  sql.NullTime
		statsUpdatedAt  sql.NullTime
	)

	err := row.Scan(
		&problem.ID,
		&problem.URL,
		&problem.Slug,
		&problem.Title,
		&problem.Number,
		&problem.Difficulty,
		&tags,
		&problem.Description,
		&problem.Notes,
		&problem.IsActive,
		&problem.CreatedAt,
		&problem.UpdatedAt,
		&statsID,
		&easeFactor,
		&intervalSeconds,
		&consecutive,
		&nextReviewAt,
		&lastRating,
		&lastReviewedAt,
		&averageRating,
		&reviewCount,
		&statsCreatedAt,
		&statsUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &problem.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}

	if statsID.Valid {
		problem.Stats = &domain.ProblemStats{
			ProblemID:          statsID.UUID,
			EaseFactor:         easeFactor.Float64,
			Interval:           time.Duration(intervalSeconds.Int64) * time.Second,
			ConsecutiveCorrect: int(consecutive.Int32),
			NextReviewAt:       nextReviewAt.Time,
			LastRating:         domain.Rating(lastRating.Int32),
			LastReviewedAt:     lastReviewedAt.Time,
			AverageRating:      averageRating.Float64,
			ReviewCount:        int(reviewCount.Int32),
			CreatedAt:          statsCreatedAt.Time,
			UpdatedAt:          statsUpdatedAt.Time,
		}
	}

	return &problem, nil
}

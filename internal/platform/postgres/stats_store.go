package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/domain"
	"github.com/svenhuster/spacecode/internal/platform/logger"
	"github.com/svenhuster/spacecode/internal/store"
)

// PostgresProblemStatsStore implements the store.ProblemStatsStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProblemStatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProblemStatsStore creates a new PostgreSQL implementation of the ProblemStatsStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProblemStatsStore(db store.DBTX, logger *slog.Logger) *PostgresProblemStatsStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProblemStatsStore{
		db:     db,
		logger: logger.With(slog.String("component", "problem_stats_store")),
	}
}

// Ensure PostgresProblemStatsStore implements store.ProblemStatsStore interface
var _ store.ProblemStatsStore = (*PostgresProblemStatsStore)(nil)

const statsColumns = `
	problem_id, ease_factor, interval_seconds, consecutive_correct,
	next_review_at, last_rating, last_reviewed_at, average_rating,
	review_count, created_at, updated_at
`

// Get implements store.ProblemStatsStore.Get
// Returns store.ErrProblemStatsNotFound if the statistics entry does not exist.
func (s *PostgresProblemStatsStore) Get(ctx context.Context, problemID uuid.UUID) (*domain.ProblemStats, error) {
	query := `SELECT ` + statsColumns + ` FROM problem_stats WHERE problem_id = $1`
	return s.get(ctx, query, problemID)
}

// GetForUpdate implements store.ProblemStatsStore.GetForUpdate
// It acquires a row-level lock and must be called within a transaction.
// Returns store.ErrProblemStatsNotFound if the statistics entry does not exist.
func (s *PostgresProblemStatsStore) GetForUpdate(ctx context.Context, problemID uuid.UUID) (*domain.ProblemStats, error) {
	query := `SELECT ` + statsColumns + ` FROM problem_stats WHERE problem_id = $1 FOR UPDATE`
	return s.get(ctx, query, problemID)
}

func (s *PostgresProblemStatsStore) get(ctx context.Context, query string, problemID uuid.UUID) (*domain.ProblemStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		stats           domain.ProblemStats
		intervalSeconds int64
	)

	err := s.db.QueryRowContext(ctx, query, problemID).Scan(
		&stats.ProblemID,
		&stats.EaseFactor,
		&intervalSeconds,
		&stats.ConsecutiveCorrect,
		&stats.NextReviewAt,
		&stats.LastRating,
		&stats.LastReviewedAt,
		&stats.AverageRating,
		&stats.ReviewCount,
		&stats.CreatedAt,
		&stats.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("problem stats not found",
				slog.String("problem_id", problemID.String()))
			return nil, store.ErrProblemStatsNotFound
		}
		log.Error("failed to get problem stats",
			slog.String("error", err.Error()),
			slog.String("problem_id", problemID.String()))
		return nil, MapError(err)
	}

	stats.Interval = time.Duration(intervalSeconds) * time.Second
	return &stats, nil
}

// Upsert implements store.ProblemStatsStore.Upsert
// It inserts the statistics entry on the first review and updates it on
// every subsequent one, handling domain validation internally.
func (s *PostgresProblemStatsStore) Upsert(ctx context.Context, stats *domain.ProblemStats) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := stats.Validate(); err != nil {
		log.Warn("problem stats validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("problem_id", stats.ProblemID.String()))
		return err
	}

	query := `
		INSERT INTO problem_stats (problem_id, ease_factor, interval_seconds,
			consecutive_correct, next_review_at, last_rating, last_reviewed_at,
			average_rating, review_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (problem_id) DO UPDATE SET
			ease_factor = EXCLUDED.ease_factor,
			interval_seconds = EXCLUDED.interval_seconds,
			consecutive_correct = EXCLUDED.consecutive_correct,
			next_review_at = EXCLUDED.next_review_at,
			last_rating = EXCLUDED.last_rating,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			average_rating = EXCLUDED.average_rating,
			review_count = EXCLUDED.review_count,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		stats.ProblemID,
		stats.EaseFactor,
		int64(stats.Interval/time.Second),
		stats.ConsecutiveCorrect,
		stats.NextReviewAt,
		stats.LastRating,
		stats.LastReviewedAt,
		stats.AverageRating,
		stats.ReviewCount,
		stats.CreatedAt,
		stats.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to upsert problem stats",
			slog.String("error", err.Error()),
			slog.String("problem_id", stats.ProblemID.String()))
		return MapError(err)
	}

	log.Debug("problem stats upserted",
		slog.String("problem_id", stats.ProblemID.String()),
		slog.Int("review_count", stats.ReviewCount))
	return nil
}

// Delete implements store.ProblemStatsStore.Delete
// Returns store.ErrProblemStatsNotFound if the statistics entry does not exist.
func (s *PostgresProblemStatsStore) Delete(ctx context.Context, problemID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM problem_stats WHERE problem_id = $1`, problemID)
	if err != nil {
		log.Error("failed to delete problem stats",
			slog.String("error", err.Error()),
			slog.String("problem_id", problemID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "problem stats"); err != nil {
		return err
	}

	log.Info("problem stats deleted",
		slog.String("problem_id", problemID.String()))
	return nil
}

// WithTx implements store.ProblemStatsStore.WithTx
// It returns a new store instance that uses the provided transaction.
func (s *PostgresProblemStatsStore) WithTx(tx *sql.Tx) store.ProblemStatsStore {
	return &PostgresProblemStatsStore{
		db:     tx,
		logger: s.logger,
	}
}

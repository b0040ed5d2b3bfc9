package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/domain"
	"github.com/svenhuster/spacecode/internal/platform/logger"
	"github.com/svenhuster/spacecode/internal/store"
)

// PostgresReviewStore implements the store.ReviewStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewStore creates a new PostgreSQL implementation of the ReviewStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresReviewStore(db store.DBTX, logger *slog.Logger) *PostgresReviewStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_store")),
	}
}

// Ensure PostgresReviewStore implements store.ReviewStore interface
var _ store.ReviewStore = (*PostgresReviewStore)(nil)

// Create implements store.ReviewStore.Create
// It appends a review record to the log, handling domain validation.
func (s *PostgresReviewStore) Create(ctx context.Context, review *domain.Review) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := review.Validate(); err != nil {
		log.Warn("review validation failed during create",
			slog.String("error", err.Error()),
			slog.String("review_id", review.ID.String()))
		return err
	}

	// A nil session ID means the review happened outside any session.
	sessionID := uuid.NullUUID{UUID: review.SessionID, Valid: review.SessionID != uuid.Nil}

	query := `
		INSERT INTO reviews (id, problem_id, session_id, rating, time_spent_seconds, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		review.ID,
		review.ProblemID,
		sessionID,
		review.Rating,
		int64(review.TimeSpent/time.Second),
		review.ReviewedAt,
	)

	if err != nil {
		log.Error("failed to create review",
			slog.String("error", err.Error()),
			slog.String("review_id", review.ID.String()),
			slog.String("problem_id", review.ProblemID.String()))
		return MapError(err)
	}

	log.Debug("review recorded",
		slog.String("review_id", review.ID.String()),
		slog.String("problem_id", review.ProblemID.String()),
		slog.Int("rating", int(review.Rating)))
	return nil
}

// ListByProblem implements store.ReviewStore.ListByProblem
func (s *PostgresReviewStore) ListByProblem(ctx context.Context, problemID uuid.UUID, limit int) ([]*domain.Review, error) {
	query := `
		SELECT id, problem_id, session_id, rating, time_spent_seconds, reviewed_at
		FROM reviews
		WHERE problem_id = $1
		ORDER BY reviewed_at DESC
	`
	args := []any{problemID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	return s.list(ctx, query, args...)
}

// ListBySession implements store.ReviewStore.ListBySession
func (s *PostgresReviewStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Review, error) {
	query := `
		SELECT id, problem_id, session_id, rating, time_spent_seconds, reviewed_at
		FROM reviews
		WHERE session_id = $1
		ORDER BY reviewed_at
	`
	return s.list(ctx, query, sessionID)
}

// CountSince implements store.ReviewStore.CountSince
func (s *PostgresReviewStore) CountSince(ctx context.Context, since time.Time) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE reviewed_at >= $1`, since).Scan(&count)
	if err != nil {
		log.Error("failed to count reviews",
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	return count, nil
}

// WithTx implements store.ReviewStore.WithTx
// It returns a new store instance that uses the provided transaction.
func (s *PostgresReviewStore) WithTx(tx *sql.Tx) store.ReviewStore {
	return &PostgresReviewStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresReviewStore) list(ctx context.Context, query string, args ...any) ([]*domain.Review, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list reviews", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var reviews []*domain.Review
	for rows.Next() {
		var (
			review           domain.Review
			sessionID        uuid.NullUUID
			timeSpentSeconds int64
		)
		err := rows.Scan(
			&review.ID,
			&review.ProblemID,
			&sessionID,
			&review.Rating,
			&timeSpentSeconds,
			&review.ReviewedAt,
		)
		if err != nil {
			log.Error("failed to scan review row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}

		review.SessionID = sessionID.UUID
		review.TimeSpent = time.Duration(timeSpentSeconds) * time.Second
		reviews = append(reviews, &review)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return reviews, nil
}

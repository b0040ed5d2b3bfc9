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

// PostgresSessionStore implements the store.SessionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the SessionStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Ensure PostgresSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*PostgresSessionStore)(nil)

const sessionColumns = `
	id, started_at, resumed_at, paused_at, completed_at, status,
	max_duration_seconds, total_elapsed_seconds, problems_reviewed,
	created_at, updated_at
`

// Create implements store.SessionStore.Create
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO sessions (id, started_at, resumed_at, paused_at, completed_at,
			status, max_duration_seconds, total_elapsed_seconds, problems_reviewed,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.StartedAt,
		session.ResumedAt,
		session.PausedAt,
		session.CompletedAt,
		session.Status,
		int64(session.MaxDuration/time.Second),
		int64(session.TotalElapsed/time.Second),
		session.ProblemsReviewed,
		session.CreatedAt,
		session.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return MapError(err)
	}

	log.Info("session created",
		slog.String("session_id", session.ID.String()),
		slog.Duration("max_duration", session.MaxDuration))
	return nil
}

// GetByID implements store.SessionStore.GetByID
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *PostgresSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	return s.get(ctx, query, id)
}

// GetForUpdate implements store.SessionStore.GetForUpdate
// It acquires a row-level lock and must be called within a transaction.
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *PostgresSessionStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 FOR UPDATE`
	return s.get(ctx, query, id)
}

// GetCurrent implements store.SessionStore.GetCurrent
// Returns store.ErrSessionNotFound when no active or paused session exists.
func (s *PostgresSessionStore) GetCurrent(ctx context.Context) (*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE status IN ('active', 'paused')
		ORDER BY started_at DESC
		LIMIT 1
	`
	return s.get(ctx, query)
}

// Update implements store.SessionStore.Update
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *PostgresSessionStore) Update(ctx context.Context, session *domain.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE sessions
		SET resumed_at = $1, paused_at = $2, completed_at = $3, status = $4,
			total_elapsed_seconds = $5, problems_reviewed = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		session.ResumedAt,
		session.PausedAt,
		session.CompletedAt,
		session.Status,
		int64(session.TotalElapsed/time.Second),
		session.ProblemsReviewed,
		session.UpdatedAt,
		session.ID,
	)

	if err != nil {
		log.Error("failed to update session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "session"); err != nil {
		return err
	}

	log.Debug("session updated",
		slog.String("session_id", session.ID.String()),
		slog.String("status", string(session.Status)))
	return nil
}

// ExpireStale implements store.SessionStore.ExpireStale
// Active sessions whose accumulated time plus the current stretch exceeds
// the budget are expired, as are paused sessions that already used it up.
func (s *PostgresSessionStore) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE sessions
		SET status = 'expired',
			completed_at = $1,
			total_elapsed_seconds = max_duration_seconds,
			updated_at = $1
		WHERE (status = 'active'
				AND total_elapsed_seconds + EXTRACT(EPOCH FROM ($1::timestamptz - resumed_at)) >= max_duration_seconds)
			OR (status = 'paused' AND total_elapsed_seconds >= max_duration_seconds)
	`
	result, err := s.db.ExecContext(ctx, query, now)
	if err != nil {
		log.Error("failed to expire stale sessions",
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	expired, err := result.RowsAffected()
	if err != nil {
		return 0, MapError(err)
	}

	if expired > 0 {
		log.Info("expired stale sessions", slog.Int64("count", expired))
	}
	return expired, nil
}

// WithTx implements store.SessionStore.WithTx
// It returns a new store instance that uses the provided transaction.
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresSessionStore) get(ctx context.Context, query string, args ...any) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		session            domain.Session
		pausedAt           sql.NullTime
		completedAt        sql.NullTime
		maxDurationSeconds int64
		totalElapsedSecs   int64
	)

	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&session.ID,
		&session.StartedAt,
		&session.ResumedAt,
		&pausedAt,
		&completedAt,
		&session.Status,
		&maxDurationSeconds,
		&totalElapsedSecs,
		&session.ProblemsReviewed,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get session", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if pausedAt.Valid {
		session.PausedAt = &pausedAt.Time
	}
	if completedAt.Valid {
		session.CompletedAt = &completedAt.Time
	}
	session.MaxDuration = time.Duration(maxDurationSeconds) * time.Second
	session.TotalElapsed = time.Duration(totalElapsedSecs) * time.Second

	return &session, nil
}

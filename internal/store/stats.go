package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/domain"
)

// ProblemStatsStore defines the interface for problem scheduling statistics persistence.
type ProblemStatsStore interface {
	// Get retrieves scheduling statistics by problem ID.
	// Returns ErrProblemStatsNotFound if the statistics entry does not exist,
	// which is the normal state for a never-reviewed problem.
	// NOTE: This method does NOT provide any row locking, so it should not be used
	// when you plan to update the row and need concurrency protection.
	Get(ctx context.Context, problemID uuid.UUID) (*domain.ProblemStats, error)

	// GetForUpdate retrieves scheduling statistics with a row-level lock using
	// SELECT FOR UPDATE. This should be used within a transaction when you plan
	// to update the row and need protection from concurrent modifications.
	// Returns ErrProblemStatsNotFound if the statistics entry does not exist.
	GetForUpdate(ctx context.Context, problemID uuid.UUID) (*domain.ProblemStats, error)

	// Upsert saves the statistics entry, inserting on first review and
	// updating thereafter. It handles domain validation internally.
	// Returns validation errors from the domain ProblemStats if data is invalid.
	Upsert(ctx context.Context, stats *domain.ProblemStats) error

	// Delete removes scheduling statistics by problem ID, resetting the
	// problem to the never-reviewed state.
	// Returns ErrProblemStatsNotFound if the statistics entry does not exist.
	Delete(ctx context.Context, problemID uuid.UUID) error

	// WithTx returns a new ProblemStatsStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) ProblemStatsStore
}

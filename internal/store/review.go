package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/domain"
)

// ReviewStore defines the interface for the append-only review log.
type ReviewStore interface {
	// Create appends a review record to the log.
	// It handles domain validation internally.
	// Returns validation errors from the domain Review if data is invalid.
	Create(ctx context.Context, review *domain.Review) error

	// ListByProblem retrieves reviews for a problem, most recent first,
	// limited to at most limit entries. A limit of zero or less means no limit.
	ListByProblem(ctx context.Context, problemID uuid.UUID, limit int) ([]*domain.Review, error)

	// ListBySession retrieves all reviews recorded during a session, in
	// the order they happened.
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Review, error)

	// CountSince returns the number of reviews recorded at or after the
	// given time, skips included.
	CountSince(ctx context.Context, since time.Time) (int, error)

	// WithTx returns a new ReviewStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) ReviewStore
}

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/domain"
)

// SessionStore defines the interface for practice session persistence.
type SessionStore interface {
	// Create saves a new session to the store.
	Create(ctx context.Context, session *domain.Session) error

	// GetByID retrieves a session by its unique ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// GetForUpdate retrieves a session with a row-level lock using SELECT FOR UPDATE.
	// This should be used within a transaction when you plan to update the
	// session and need protection from concurrent modifications.
	// Returns ErrSessionNotFound if the session does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// GetCurrent retrieves the most recently started session that is still
	// active or paused.
	// Returns ErrSessionNotFound when no such session exists.
	GetCurrent(ctx context.Context) (*domain.Session, error)

	// Update persists the session's current state.
	// Returns ErrSessionNotFound if the session does not exist.
	Update(ctx context.Context, session *domain.Session) error

	// ExpireStale transitions every active or paused session whose time
	// budget ran out before now to the expired status, and returns how many
	// sessions were transitioned. Expiry is authoritative here: a session
	// past its budget is expired even if no client ever reported it.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)

	// WithTx returns a new SessionStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) SessionStore
}

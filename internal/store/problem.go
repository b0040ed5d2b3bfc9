package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/domain"
)

// ProblemStore defines the interface for problem data persistence.
type ProblemStore interface {
	// Create saves a new problem to the store.
	// It handles domain validation internally.
	// Returns validation errors from the domain Problem if data is invalid.
	// Returns ErrProblemURLExists if a problem with the same URL already exists.
	Create(ctx context.Context, problem *domain.Problem) error

	// GetByID retrieves a problem by its unique ID.
	// The returned problem has its Stats field populated when scheduling
	// state exists, and nil for never-reviewed problems.
	// Returns ErrProblemNotFound if the problem does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Problem, error)

	// GetByURL retrieves a problem by its normalized URL.
	// Returns ErrProblemNotFound if the problem does not exist.
	GetByURL(ctx context.Context, url string) (*domain.Problem, error)

	// List retrieves all problems, each with its Stats field populated when
	// scheduling state exists. When includeInactive is false only active
	// problems are returned.
	List(ctx context.Context, includeInactive bool) ([]*domain.Problem, error)

	// Update modifies an existing problem's metadata fields.
	// It handles domain validation internally.
	// Returns ErrProblemNotFound if the problem does not exist.
	// Returns validation errors from the domain Problem if data is invalid.
	Update(ctx context.Context, problem *domain.Problem) error

	// Delete removes a problem from the store by its ID.
	// Returns ErrProblemNotFound if the problem does not exist.
	//
	// Associated stats and reviews are removed through database-level
	// CASCADE DELETE constraints, not application code.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ProblemStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) ProblemStore
}

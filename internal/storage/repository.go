package storage

import (
	"context"

	"github.com/example/faultchar/characterization/domain"
)

// ListOptions provides filtering options for list operations.
type ListOptions struct {
	// Statuses to filter by (empty = all)
	Statuses []domain.SessionStatus

	// Algorithm to filter by (empty = all)
	Algorithm string

	// Pagination
	Limit  int
	Offset int
}

// SessionRepository provides access to Session storage.
type SessionRepository interface {
	// Create creates a new Session.
	Create(ctx context.Context, session *domain.Session) error

	// Get retrieves a Session by ID, including its failure-inducing combinations.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Update updates an existing Session. It fails with
	// domain.ErrConcurrentModify if the stored version differs.
	Update(ctx context.Context, session *domain.Session) error

	// List lists Sessions, newest first, with optional filtering.
	List(ctx context.Context, opts ListOptions) ([]*domain.Session, error)

	// Delete deletes a Session with its executions and findings.
	Delete(ctx context.Context, id string) error
}

// ExecutionRepository provides access to executed test inputs.
type ExecutionRepository interface {
	// Record appends executions to a session.
	Record(ctx context.Context, sessionID string, executions []domain.Execution) error

	// List returns a session's executions in the order they were recorded.
	List(ctx context.Context, sessionID string) ([]domain.Execution, error)
}

// FindingRepository provides access to failure-inducing combinations.
type FindingRepository interface {
	// Replace stores the read-out of a session, replacing earlier findings.
	Replace(ctx context.Context, sessionID string, combinations []domain.Combination) error

	// List returns a session's findings in read-out order.
	List(ctx context.Context, sessionID string) ([]domain.Combination, error)
}

// UnitOfWork provides transactional access to all repositories.
type UnitOfWork interface {
	// Repository accessors
	Sessions() SessionRepository
	Executions() ExecutionRepository
	Findings() FindingRepository

	// Transaction control
	Commit() error
	Rollback() error
}

// Storage provides the main entry point for storage operations.
type Storage interface {
	// Begin starts a new transaction and returns a UnitOfWork.
	Begin(ctx context.Context) (UnitOfWork, error)

	// Close closes the storage connection.
	Close() error

	// Migrate runs database migrations.
	Migrate(ctx context.Context) error
}

// WithTx runs fn in a transaction, committing on success and rolling back
// on error.
func WithTx(ctx context.Context, s Storage, fn func(uow UnitOfWork) error) error {
	uow, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(uow); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}

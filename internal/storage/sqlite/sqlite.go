package sqlite

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/faultchar/internal/storage"
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

var _ storage.Storage = (*SQLiteStorage)(nil)

// New creates a new SQLite storage instance. Use ":memory:" for a private
// in-memory database.
func New(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection for writes
	db.SetMaxIdleConns(1)

	return &SQLiteStorage{db: db}, nil
}

// Begin starts a new transaction.
func (s *SQLiteStorage) Begin(ctx context.Context) (storage.UnitOfWork, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newUnitOfWork(tx), nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	return Migrate(ctx, s.db)
}

// unitOfWork implements the UnitOfWork interface.
type unitOfWork struct {
	tx         *sql.Tx
	sessions   *sessionRepo
	executions *executionRepo
	findings   *findingRepo
}

func newUnitOfWork(tx *sql.Tx) *unitOfWork {
	findings := &findingRepo{tx: tx}
	return &unitOfWork{
		tx:         tx,
		sessions:   &sessionRepo{tx: tx, findings: findings},
		executions: &executionRepo{tx: tx},
		findings:   findings,
	}
}

func (u *unitOfWork) Sessions() storage.SessionRepository {
	return u.sessions
}

func (u *unitOfWork) Executions() storage.ExecutionRepository {
	return u.executions
}

func (u *unitOfWork) Findings() storage.FindingRepository {
	return u.findings
}

func (u *unitOfWork) Commit() error {
	return u.tx.Commit()
}

func (u *unitOfWork) Rollback() error {
	return u.tx.Rollback()
}

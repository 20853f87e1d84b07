package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/faultchar/characterization/domain"
	"github.com/example/faultchar/internal/storage"
)

type sessionRepo struct {
	tx       *sql.Tx
	findings *findingRepo
}

const sessionColumns = `id, algorithm, status, model_json, config_json, rounds, executions,
	failure_reason, created_at, updated_at, completed_at, version`

func (r *sessionRepo) Create(ctx context.Context, s *domain.Session) error {
	modelJSON, configJSON, err := marshalSession(s)
	if err != nil {
		return err
	}

	_, err = r.tx.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Algorithm, int(s.Status), modelJSON, configJSON, s.Rounds, s.Executions,
		nullString(s.FailureReason), s.CreatedAt, s.UpdatedAt, s.CompletedAt, s.Version)
	if err != nil {
		return err
	}
	if len(s.FailureInducing) > 0 {
		return r.findings.Replace(ctx, s.ID, s.FailureInducing)
	}
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*domain.Session, error) {
	row := r.tx.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)

	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	s.FailureInducing, err = r.findings.List(ctx, id)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *sessionRepo) Update(ctx context.Context, s *domain.Session) error {
	modelJSON, configJSON, err := marshalSession(s)
	if err != nil {
		return err
	}

	result, err := r.tx.ExecContext(ctx, `
		UPDATE sessions
		SET algorithm = ?, status = ?, model_json = ?, config_json = ?, rounds = ?,
			executions = ?, failure_reason = ?, updated_at = ?, completed_at = ?,
			version = version + 1
		WHERE id = ? AND version = ?
	`, s.Algorithm, int(s.Status), modelJSON, configJSON, s.Rounds,
		s.Executions, nullString(s.FailureReason), s.UpdatedAt, s.CompletedAt,
		s.ID, s.Version)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: session %s version %d", domain.ErrConcurrentModify, s.ID, s.Version)
	}

	s.Version++
	return r.findings.Replace(ctx, s.ID, s.FailureInducing)
}

func (r *sessionRepo) List(ctx context.Context, opts storage.ListOptions) ([]*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	var (
		where []string
		args  []any
	)
	if len(opts.Statuses) > 0 {
		placeholders := make([]string, len(opts.Statuses))
		for i, status := range opts.Statuses {
			placeholders[i] = "?"
			args = append(args, int(status))
		}
		where = append(where, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if opts.Algorithm != "" {
		where = append(where, "algorithm = ?")
		args = append(args, opts.Algorithm)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if opts.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := r.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, s := range sessions {
		if s.FailureInducing, err = r.findings.List(ctx, s.ID); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	result, err := r.tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}

	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	s := &domain.Session{}
	var (
		status        int
		modelJSON     string
		configJSON    string
		failureReason sql.NullString
		completedAt   sql.NullTime
	)

	err := row.Scan(&s.ID, &s.Algorithm, &status, &modelJSON, &configJSON, &s.Rounds, &s.Executions,
		&failureReason, &s.CreatedAt, &s.UpdatedAt, &completedAt, &s.Version)
	if err != nil {
		return nil, err
	}

	s.Status = domain.SessionStatus(status)
	if failureReason.Valid {
		s.FailureReason = failureReason.String
	}
	if completedAt.Valid {
		s.CompletedAt = &completedAt.Time
	}

	if s.Model, err = domain.UnmarshalTestModel([]byte(modelJSON)); err != nil {
		return nil, fmt.Errorf("session %s: decoding model: %w", s.ID, err)
	}
	if err := json.Unmarshal([]byte(configJSON), &s.Config); err != nil {
		return nil, fmt.Errorf("session %s: decoding config: %w", s.ID, err)
	}
	return s, nil
}

func marshalSession(s *domain.Session) (string, string, error) {
	if s.Model == nil {
		return "", "", fmt.Errorf("%w: session %s has no model", domain.ErrInvalidArgument, s.ID)
	}
	modelJSON, err := json.Marshal(s.Model)
	if err != nil {
		return "", "", err
	}
	configJSON, err := json.Marshal(s.Config)
	if err != nil {
		return "", "", err
	}
	return string(modelJSON), string(configJSON), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

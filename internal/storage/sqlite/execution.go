package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/faultchar/characterization/domain"
)

type executionRepo struct {
	tx *sql.Tx
}

func (r *executionRepo) Record(ctx context.Context, sessionID string, executions []domain.Execution) error {
	if len(executions) == 0 {
		return nil
	}
	stmt, err := r.tx.PrepareContext(ctx, `
		INSERT INTO executions (
			session_id, round, combination_json, outcome, cause, duration_ns, executed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, exec := range executions {
		combinationJSON, err := json.Marshal(exec.Combination)
		if err != nil {
			return err
		}
		var cause sql.NullString
		if exec.Result.Cause != nil {
			cause = sql.NullString{String: exec.Result.Cause.Error(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, sessionID, exec.Round, string(combinationJSON),
			int(exec.Result.Outcome), cause, int64(exec.Duration), exec.ExecutedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *executionRepo) List(ctx context.Context, sessionID string) ([]domain.Execution, error) {
	rows, err := r.tx.QueryContext(ctx, `
		SELECT round, combination_json, outcome, cause, duration_ns, executed_at
		FROM executions WHERE session_id = ? ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var executions []domain.Execution
	for rows.Next() {
		var (
			exec            domain.Execution
			combinationJSON string
			outcome         int
			cause           sql.NullString
			durationNS      int64
		)
		if err := rows.Scan(&exec.Round, &combinationJSON, &outcome, &cause, &durationNS, &exec.ExecutedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(combinationJSON), &exec.Combination); err != nil {
			return nil, err
		}
		exec.Result.Outcome = domain.TestOutcome(outcome)
		if cause.Valid {
			exec.Result.Cause = errors.New(cause.String)
		}
		exec.Duration = time.Duration(durationNS)
		executions = append(executions, exec)
	}
	return executions, rows.Err()
}

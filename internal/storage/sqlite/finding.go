package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/example/faultchar/characterization/domain"
)

type findingRepo struct {
	tx *sql.Tx
}

func (r *findingRepo) Replace(ctx context.Context, sessionID string, combinations []domain.Combination) error {
	if _, err := r.tx.ExecContext(ctx, `DELETE FROM findings WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	for i, c := range combinations {
		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		if _, err := r.tx.ExecContext(ctx, `
			INSERT INTO findings (session_id, idx, combination_json, size)
			VALUES (?, ?, ?, ?)
		`, sessionID, i, string(data), c.AssignedCount()); err != nil {
			return err
		}
	}
	return nil
}

func (r *findingRepo) List(ctx context.Context, sessionID string) ([]domain.Combination, error) {
	rows, err := r.tx.QueryContext(ctx, `
		SELECT combination_json FROM findings WHERE session_id = ? ORDER BY idx
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var combinations []domain.Combination
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var c domain.Combination
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return nil, err
		}
		combinations = append(combinations, c)
	}
	return combinations, rows.Err()
}

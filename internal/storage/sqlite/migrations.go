package sqlite

import (
	"context"
	"database/sql"
)

// Migrate runs all database migrations. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *sql.DB) error {
	migrations := []string{
		// Sessions table
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			algorithm TEXT NOT NULL,
			status INTEGER NOT NULL DEFAULT 0,
			model_json TEXT NOT NULL,
			config_json TEXT NOT NULL,
			rounds INTEGER NOT NULL DEFAULT 0,
			executions INTEGER NOT NULL DEFAULT 0,
			failure_reason TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			completed_at DATETIME,
			version INTEGER NOT NULL DEFAULT 1
		)`,

		// Executions table
		`CREATE TABLE IF NOT EXISTS executions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			combination_json TEXT NOT NULL,
			outcome INTEGER NOT NULL,
			cause TEXT,
			duration_ns INTEGER NOT NULL DEFAULT 0,
			executed_at DATETIME NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		)`,

		// Findings table
		`CREATE TABLE IF NOT EXISTS findings (
			session_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			combination_json TEXT NOT NULL,
			size INTEGER NOT NULL,
			PRIMARY KEY (session_id, idx),
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		)`,

		// Indexes for efficient queries
		`CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_executions_session ON executions(session_id, id)`,
	}

	for _, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return err
		}
	}

	return nil
}

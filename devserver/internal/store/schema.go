package store

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		full_name       TEXT NOT NULL,
		mail            TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		role            TEXT NOT NULL,
		birth_date      TEXT,
		created_at      TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS journals (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id         INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		wellbeing_score INTEGER NOT NULL,
		note_text       TEXT,
		created_at      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS journals_user_created ON journals(user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		text    TEXT NOT NULL,
		options TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS test_results (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		total_score INTEGER NOT NULL,
		created_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS test_results_user_created ON test_results(user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS ai_logs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		request    TEXT NOT NULL,
		response   TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ai_summaries (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id      INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		summary_text TEXT NOT NULL,
		created_at   TEXT NOT NULL
	)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaStatements create the service tables. Every statement is idempotent
// so EnsureSchema is safe to run on each startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS activities (
		activity_id               TEXT PRIMARY KEY,
		activity_name             TEXT NOT NULL,
		enabled                   BOOLEAN NOT NULL DEFAULT TRUE,
		grading_notebook          BYTEA,
		grading_notebook_filename TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS instructors (
		id    BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name  TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS activity_instructors (
		activity_id   TEXT NOT NULL REFERENCES activities(activity_id) ON DELETE CASCADE,
		instructor_id BIGINT NOT NULL REFERENCES instructors(id) ON DELETE CASCADE,
		PRIMARY KEY (activity_id, instructor_id)
	)`,
	`CREATE TABLE IF NOT EXISTS user_submissions (
		id             BIGSERIAL PRIMARY KEY,
		activity_id    TEXT NOT NULL REFERENCES activities(activity_id) ON DELETE CASCADE,
		username       TEXT NOT NULL,
		name           TEXT NOT NULL,
		email          TEXT,
		prequiz_token  TEXT,
		postquiz_token TEXT,
		UNIQUE (activity_id, username)
	)`,
	`CREATE TABLE IF NOT EXISTS notebooks (
		id                BIGSERIAL PRIMARY KEY,
		submission_id     BIGINT NOT NULL REFERENCES user_submissions(id) ON DELETE CASCADE,
		notebook          BYTEA,
		notebook_filename TEXT,
		score             DOUBLE PRECISION,
		submitted_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notebooks_submission ON notebooks (submission_id)`,
	`CREATE INDEX IF NOT EXISTS idx_user_submissions_email ON user_submissions (email)`,
}

// EnsureSchema creates all tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

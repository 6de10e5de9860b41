package store

import (
	"context"
	"log"
)

// EnsureSchema creates missing tables on startup. Statements are idempotent so
// repeated runs against an existing database are safe.
func (d *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS students (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			roll_number TEXT NOT NULL UNIQUE,
			grade TEXT NOT NULL DEFAULT '',
			guardian_contact TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS teachers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			employee_number TEXT NOT NULL DEFAULT '',
			department TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'teacher',
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			token TEXT PRIMARY KEY,
			teacher_id TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			revoked BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS attendance_marks (
			kind TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			day TEXT NOT NULL,
			status TEXT NOT NULL,
			time_marked TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (kind, entity_id, day)
		)`,
		`CREATE TABLE IF NOT EXISTS attendance_summaries (
			kind TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			total_days INT NOT NULL DEFAULT 0,
			present_days INT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (kind, entity_id)
		)`,
		`CREATE TABLE IF NOT EXISTS homework (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			subject TEXT NOT NULL DEFAULT '',
			grade TEXT NOT NULL DEFAULT '',
			assigned_date TEXT NOT NULL,
			due_date TEXT NOT NULL,
			created_by TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS contributors (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT '',
			github_url TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS progress_logs (
			id TEXT PRIMARY KEY,
			mentor_id TEXT NOT NULL,
			student_id TEXT NOT NULL,
			day TEXT NOT NULL,
			topic TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			rating INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_marks_day ON attendance_marks (day, kind)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_logs_mentor ON progress_logs (mentor_id, day)`,
	}
	for _, stmt := range stmts {
		if _, err := d.Client.ExecContext(ctx, stmt); err != nil {
			log.Printf("schema: statement failed: %v", err)
			return err
		}
	}
	return nil
}

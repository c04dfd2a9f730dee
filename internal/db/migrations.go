package db

import (
	"context"
	"fmt"
	"log/slog"
)

// migration is one versioned schema change. Statements run in order inside a transaction.
type migration struct {
	version  string
	sqlite   []string
	postgres []string
}

// migrations is the ordered schema history. Never edit an applied entry; append a new one.
var migrations = []migration{
	{
		version: "0001_users",
		sqlite: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id            INTEGER  PRIMARY KEY AUTOINCREMENT,
				username      TEXT     NOT NULL UNIQUE,
				group_name    TEXT     NOT NULL,
				password_hash TEXT     NOT NULL,
				created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		},
		postgres: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id            BIGSERIAL   PRIMARY KEY,
				username      TEXT        NOT NULL UNIQUE,
				group_name    TEXT        NOT NULL,
				password_hash TEXT        NOT NULL,
				created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
		},
	},
	{
		version: "0002_comments",
		sqlite: []string{
			`CREATE TABLE IF NOT EXISTS comments (
				id         INTEGER  PRIMARY KEY AUTOINCREMENT,
				user_id    INTEGER  NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				content    TEXT     NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME
			)`,
			`CREATE INDEX IF NOT EXISTS idx_comments_user_id ON comments(user_id)`,
		},
		postgres: []string{
			`CREATE TABLE IF NOT EXISTS comments (
				id         BIGSERIAL   PRIMARY KEY,
				user_id    BIGINT      NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				content    TEXT        NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ
			)`,
			`CREATE INDEX IF NOT EXISTS idx_comments_user_id ON comments(user_id)`,
		},
	},
	{
		version: "0003_comment_histories",
		sqlite: []string{
			`CREATE TABLE IF NOT EXISTS comment_histories (
				id         INTEGER  PRIMARY KEY AUTOINCREMENT,
				comment_id INTEGER  NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
				timestamp  DATETIME NOT NULL,
				old_value  TEXT     NOT NULL,
				new_value  TEXT     NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_comment_histories_comment_id ON comment_histories(comment_id)`,
		},
		postgres: []string{
			`CREATE TABLE IF NOT EXISTS comment_histories (
				id         BIGSERIAL   PRIMARY KEY,
				comment_id BIGINT      NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
				timestamp  TIMESTAMPTZ NOT NULL,
				old_value  TEXT        NOT NULL,
				new_value  TEXT        NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_comment_histories_comment_id ON comment_histories(comment_id)`,
		},
	},
}

// migrate applies every migration not yet recorded in schema_migrations.
func migrate(ctx context.Context, d *DB) error {
	if _, err := d.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("ensuring schema_migrations: %w", err)
	}

	for _, m := range migrations {
		applied, err := isApplied(ctx, d, m.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := apply(ctx, d, m); err != nil {
			return err
		}
	}

	return nil
}

func isApplied(ctx context.Context, d *DB, version string) (bool, error) {
	var count int
	err := d.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = $1", version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking migration %s: %w", version, err)
	}
	return count > 0, nil
}

func apply(ctx context.Context, d *DB, m migration) error {
	stmts := m.sqlite
	if d.Dialect == Postgres {
		stmts = m.postgres
	}

	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning migration %s: %w", m.version, err)
	}
	defer Rollback(tx)

	for i, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %s statement %d: %w", m.version, i, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES ($1, CURRENT_TIMESTAMP)", m.version,
	); err != nil {
		return fmt.Errorf("recording migration %s: %w", m.version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration %s: %w", m.version, err)
	}
	return nil
}

// AppliedVersions returns the recorded migration versions in order.
func AppliedVersions(ctx context.Context, d *DB) ([]string, error) {
	rows, err := d.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			slog.WarnContext(ctx, "closing rows", "error", cerr)
		}
	}()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning migration: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

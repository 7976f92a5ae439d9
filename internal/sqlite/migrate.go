package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/fitweek/internal/errors"
)

// migrations are applied in order. The database's user_version records how many of them have been applied, so
// existing entries must never be edited, only appended to.
//
//nolint:gochecknoglobals // static list of schema migrations.
var migrations = []string{
	`CREATE TABLE documents
(
    path       TEXT PRIMARY KEY NOT NULL,
    parent     TEXT             NOT NULL,
    data       TEXT             NOT NULL CHECK (json_valid(data)),
    created_at TEXT             NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ')),
    updated_at TEXT             NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ'))
) STRICT, WITHOUT ROWID;

CREATE INDEX documents_parent_idx ON documents (parent);`,
}

// migrate applies the migrations the database has not seen yet in a single transaction.
func (db *Database) migrate(ctx context.Context, steps []string) error {
	start := time.Now()

	tx, err := db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer db.rollback(ctx, tx)()

	var version int
	if err = tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("query user_version: %w", err)
	}
	if version > len(steps) {
		return errors.Wrap(errors.New("database is newer than this binary"), "check schema version",
			slog.Int("version", version), slog.Int("known", len(steps)))
	}
	if version == len(steps) {
		return nil
	}

	for i := version; i < len(steps); i++ {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "applying migration", slog.Int("version", i+1))
		if _, err = tx.ExecContext(ctx, steps[i]); err != nil {
			return errors.Wrap(err, "apply migration", slog.Int("version", i+1))
		}
	}

	// PRAGMA does not accept bound parameters.
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", len(steps))); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database",
		slog.Int("from", version), slog.Int("to", len(steps)), slog.Duration("duration", time.Since(start)))
	return nil
}

// rollback returns a function rolling back tx that is meant to be deferred right after starting the transaction.
func (db *Database) rollback(ctx context.Context, tx *sql.Tx) func() {
	return func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction",
				errors.SlogError(errors.Wrap(err, "rollback")))
		}
	}
}

// Rollback is the exported form of rollback for packages running their own transactions.
func (db *Database) Rollback(ctx context.Context, tx *sql.Tx) func() {
	return db.rollback(ctx, tx)
}

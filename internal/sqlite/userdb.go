package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/myrjola/fitweek/internal/errors"
)

// ExportUserDB copies every document owned by uid into a standalone SQLite file created under dir and returns its
// path. The file has the same documents table so that it can be opened with [NewDatabase].
//
// A user owns their profile document, everything below it and their week plans.
func (db *Database) ExportUserDB(ctx context.Context, uid string, dir string) (_ string, err error) {
	if uid == "" || strings.ContainsAny(uid, "/") {
		return "", errors.Wrap(errors.New("invalid user id"), "export user", slog.String("uid", uid))
	}
	exportPath := filepath.Join(dir, fmt.Sprintf("fitweek-export-%s.sqlite3", uid))

	// ATTACH is not allowed inside a transaction, so the export pins a connection of its own.
	conn, err := db.ReadWrite.Conn(ctx)
	if err != nil {
		return "", fmt.Errorf("get connection: %w", err)
	}
	defer func() {
		err = errors.Join(err, conn.Close())
	}()

	if _, err = conn.ExecContext(ctx, "ATTACH DATABASE ? AS export", exportPath); err != nil {
		return "", errors.Wrap(err, "attach export database", slog.String("path", exportPath))
	}
	defer func() {
		if _, detachErr := conn.ExecContext(context.WithoutCancel(ctx), "DETACH DATABASE export"); detachErr != nil {
			err = errors.Join(err, fmt.Errorf("detach export database: %w", detachErr))
		}
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer db.rollback(ctx, tx)()

	var schema string
	if err = tx.QueryRowContext(ctx,
		`SELECT sql FROM main.sqlite_schema WHERE type = 'table' AND name = 'documents'`).Scan(&schema); err != nil {
		return "", fmt.Errorf("read documents schema: %w", err)
	}
	exportSchema := strings.Replace(schema, "CREATE TABLE documents", "CREATE TABLE IF NOT EXISTS export.documents", 1)
	if _, err = tx.ExecContext(ctx, exportSchema); err != nil {
		return "", fmt.Errorf("create export schema: %w", err)
	}

	owned, args := OwnedByUser(uid)
	result, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO export.documents (path, parent, data, created_at, updated_at)
SELECT path, parent, data, created_at, updated_at FROM main.documents WHERE `+owned, args...)
	if err != nil {
		return "", fmt.Errorf("copy documents: %w", err)
	}
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA export.user_version = %d", len(migrations))); err != nil {
		return "", fmt.Errorf("set export user_version: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit export: %w", err)
	}

	copied, _ := result.RowsAffected()
	db.logger.LogAttrs(ctx, slog.LevelInfo, "exported user database",
		slog.String("uid", uid), slog.String("path", exportPath), slog.Int64("documents", copied))
	return exportPath, nil
}

// OwnedByUser returns a WHERE clause fragment and its arguments matching the documents owned by uid.
func OwnedByUser(uid string) (string, []any) {
	escaped := escapeLike(uid)
	return `(path = ? OR path LIKE ? ESCAPE '\' OR path LIKE ? ESCAPE '\')`,
		[]any{"users/" + uid, "users/" + escaped + "/%", "userWeeks/" + escaped + `\_%`}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

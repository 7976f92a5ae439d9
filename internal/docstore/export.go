package docstore

import (
	"context"
	"log/slog"
	"strings"

	"github.com/myrjola/fitweek/internal/errors"
	"github.com/myrjola/fitweek/internal/sqlite"
)

// ExportUser returns every document owned by uid: the profile, everything stored below it and the week plans.
func (s *Store) ExportUser(ctx context.Context, uid string) ([]Document, error) {
	if uid == "" || strings.Contains(uid, "/") {
		return nil, errors.Wrap(ErrInvalidPath, "export user", slog.String("uid", uid))
	}
	owned, args := sqlite.OwnedByUser(uid)
	docs, err := s.query(ctx, `SELECT path, data, created_at, updated_at FROM documents WHERE `+owned+` ORDER BY path`,
		args...)
	if err != nil {
		return nil, errors.Wrap(err, "export user", slog.String("uid", uid))
	}
	return docs, nil
}

// ExportUserDB writes the documents owned by uid into a standalone SQLite database under dir.
func (s *Store) ExportUserDB(ctx context.Context, uid string, dir string) (string, error) {
	path, err := s.db.ExportUserDB(ctx, uid, dir)
	if err != nil {
		return "", errors.Wrap(err, "export user database", slog.String("uid", uid))
	}
	return path, nil
}

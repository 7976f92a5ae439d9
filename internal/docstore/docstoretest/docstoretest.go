// Package docstoretest creates document stores backed by a temporary SQLite file for tests.
package docstoretest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/myrjola/fitweek/internal/docstore"
	"github.com/myrjola/fitweek/internal/sqlite"
	"github.com/myrjola/fitweek/internal/testhelpers"
)

// New returns a store that is closed when the test finishes. A file database is used instead of ":memory:" because
// shared cache in-memory databases report SQLITE_LOCKED instead of waiting when readers and writers overlap.
func New(t testing.TB) *docstore.Store {
	t.Helper()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	ctx, cancel := context.WithCancel(context.Background())
	db, err := sqlite.NewDatabase(ctx, filepath.Join(t.TempDir(), "fitweek.sqlite3"), logger)
	if err != nil {
		cancel()
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		if err = db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})
	return docstore.New(db, logger)
}

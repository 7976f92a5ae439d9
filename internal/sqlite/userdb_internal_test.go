package sqlite

import (
	"database/sql"
	"os"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/fitweek/internal/testhelpers"
)

func TestDatabase_ExportUserDB(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		uid       string
		wantPaths []string
		wantErr   bool
	}{
		{
			name: "profile, sub-collections and weeks",
			uid:  "u1",
			wantPaths: []string{
				"userWeeks/u1_2024-W01",
				"users/u1",
				"users/u1/measurements/2024-01-01",
				"users/u1/progress/p1",
			},
			wantErr: false,
		},
		{
			name:      "prefix of another user id is not matched",
			uid:       "u",
			wantPaths: []string{"users/u"},
			wantErr:   false,
		},
		{
			name:      "unknown user exports an empty database",
			uid:       "nobody",
			wantPaths: nil,
			wantErr:   false,
		},
		{
			name:      "path separator in user id",
			uid:       "u1/../u2",
			wantPaths: nil,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := t.Context()
			db, err := NewDatabase(ctx, ":memory:", testhelpers.NewLogger(testhelpers.NewWriter(t)))
			if err != nil {
				t.Fatalf("NewDatabase: %v", err)
			}
			t.Cleanup(func() { _ = db.Close() })

			for _, path := range []string{
				"users/u1", "users/u1/measurements/2024-01-01", "users/u1/progress/p1", "userWeeks/u1_2024-W01",
				"users/u", "users/u2", "users/u2/measurements/2024-01-01", "userWeeks/u2_2024-W01", "userWeeks/u10_2024-W01",
			} {
				if _, err = db.ReadWrite.ExecContext(ctx,
					`INSERT INTO documents (path, parent, data) VALUES (?, '', '{}')`, path); err != nil {
					t.Fatalf("insert %s: %v", path, err)
				}
			}

			exportPath, err := db.ExportUserDB(ctx, tt.uid, t.TempDir())
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExportUserDB() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if _, err = os.Stat(exportPath); err != nil {
				t.Fatalf("export file: %v", err)
			}

			exported, err := sql.Open("sqlite3", exportPath)
			if err != nil {
				t.Fatalf("open export: %v", err)
			}
			defer exported.Close()
			rows, err := exported.QueryContext(ctx, "SELECT path FROM documents ORDER BY path")
			if err != nil {
				t.Fatalf("query export: %v", err)
			}
			defer rows.Close()
			var paths []string
			for rows.Next() {
				var path string
				if err = rows.Scan(&path); err != nil {
					t.Fatalf("scan: %v", err)
				}
				paths = append(paths, path)
			}
			if err = rows.Err(); err != nil {
				t.Fatalf("rows: %v", err)
			}
			slices.Sort(tt.wantPaths)
			if diff := cmp.Diff(tt.wantPaths, paths); diff != "" {
				t.Errorf("exported paths mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

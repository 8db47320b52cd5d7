package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// OpenTestDB opens a throwaway SQLite database under t.TempDir(), applies
// the schema, and registers cleanup — the shape the teacher's tests use
// throughout internal/storage.
func OpenTestDB(t *testing.T, dimensions int) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cadi-test.db")
	db, err := Open(path, dimensions)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

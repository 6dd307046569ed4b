// Package testing provides testing utilities and helpers for the folio
// project.
package testing

import (
	"path/filepath"
	"testing"

	"github.com/avoran/folio/internal/database"
)

// NewTestDB creates a file-backed SQLite database in a per-test temp
// directory with the schema applied. The connection is closed when the
// test finishes.
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "folio_test.db")
	db, err := database.New(database.Config{
		Path:    path,
		Profile: database.ProfileStandard,
		Name:    "folio_test",
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})

	return db
}

// Package testutil provides shared test helpers for setting up journal
// stores and persistence backends.
package testutil

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/gaocuixia/running-journal/internal/journal"
	"github.com/gaocuixia/running-journal/internal/persist"
)

// TestFileBackend creates a file backend in a temp directory that is
// automatically cleaned up.
func TestFileBackend(t *testing.T) *persist.File {
	t.Helper()
	return persist.NewFile(filepath.Join(t.TempDir(), "journal.json"))
}

// TestSQLiteBackend creates a temporary SQLite backend that is
// automatically cleaned up.
func TestSQLiteBackend(t *testing.T) *persist.SQLite {
	t.Helper()
	db, err := persist.OpenSQLite(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a loaded Store over a temp file backend. The store
// starts with the bootstrap articles and no events.
func TestStore(t *testing.T) *journal.Store {
	t.Helper()
	store := journal.New(TestFileBackend(t), slog.Default())
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	return store
}

package persist

import (
	"path/filepath"
	"testing"

	"github.com/gaocuixia/running-journal/internal/models"
)

func testDB(t *testing.T) *SQLite {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLite_EmptyYieldsSeed(t *testing.T) {
	db := testDB(t)
	snap, err := db.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Articles) != 4 || len(snap.Events) != 0 {
		t.Fatalf("snap = %d articles, %d events, want seed state", len(snap.Articles), len(snap.Events))
	}
}

func TestSQLite_FlushLoadRoundTrip(t *testing.T) {
	db := testDB(t)

	want := Snapshot{
		Articles: []models.Article{
			{ID: 3, Title: "后写的", Date: "2025-03-03", Category: "心得", Content: "b"},
			{ID: 1, Title: "先写的", Date: "2025-01-01", Category: "训练", Content: "a"},
		},
		Events: []models.Event{
			{ID: 9, Name: "越野", Date: "2025-04-04", Distance: 0, Location: "山里", FinishTime: "5:10:00", Category: "越野", Notes: "累"},
			{ID: 5, Name: "全马", Date: "2025-05-05", Distance: 42.195, Location: "城里", FinishTime: "3:40:00", Category: "全马"},
		},
	}
	if err := db.Flush(want); err != nil {
		t.Fatal(err)
	}

	got, err := db.Load()
	if err != nil {
		t.Fatal(err)
	}
	// Insertion order survives even though ids are out of order.
	for i := range want.Articles {
		if got.Articles[i] != want.Articles[i] {
			t.Errorf("articles[%d] = %+v, want %+v", i, got.Articles[i], want.Articles[i])
		}
	}
	for i := range want.Events {
		if got.Events[i] != want.Events[i] {
			t.Errorf("events[%d] = %+v, want %+v", i, got.Events[i], want.Events[i])
		}
	}
}

func TestSQLite_FlushReplacesEverything(t *testing.T) {
	db := testDB(t)

	if err := db.Flush(Snapshot{
		Events: []models.Event{{ID: 1, Name: "旧", Date: "2025-01-01"}, {ID: 2, Name: "旧2", Date: "2025-01-02"}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := db.Flush(Snapshot{
		Events: []models.Event{{ID: 3, Name: "新", Date: "2025-02-01"}},
	}); err != nil {
		t.Fatal(err)
	}

	snap, err := db.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Events) != 1 || snap.Events[0].ID != 3 {
		t.Fatalf("events = %+v, want only the replacement", snap.Events)
	}
}

func TestSQLite_ReopenKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Flush(Snapshot{
		Articles: []models.Article{{ID: 7, Title: "持久", Date: "2025-06-06", Category: "心得", Content: "z"}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	snap, err := reopened.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Articles) != 1 || snap.Articles[0].ID != 7 {
		t.Fatalf("articles = %+v", snap.Articles)
	}
}

package persist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gaocuixia/running-journal/internal/models"
)

func TestFile_MissingBlobYieldsSeed(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "journal.json"))
	snap, err := f.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Articles) != 4 {
		t.Fatalf("len(articles) = %d, want 4 seed articles", len(snap.Articles))
	}
	if snap.Articles[0].ID != 1 || snap.Articles[0].Category != "比赛感悟" {
		t.Errorf("articles[0] = %+v", snap.Articles[0])
	}
	if len(snap.Events) != 0 {
		t.Errorf("events = %+v, want none", snap.Events)
	}
	// Loading must not create the blob.
	if _, err := os.Stat(f.Path()); !os.IsNotExist(err) {
		t.Error("load created the blob file")
	}
}

func TestFile_FlushLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.json")
	f := NewFile(path)

	want := Snapshot{
		Articles: []models.Article{{ID: 10, Title: "t", Date: "2025-01-01", Category: "c", Content: "x"}},
		Events:   []models.Event{{ID: 20, Name: "n", Date: "2025-02-02", Distance: 21.0975, Location: "l", FinishTime: "1:55:00", Category: "半马"}},
	}
	if err := f.Flush(want); err != nil {
		t.Fatalf("flush: %v", err)
	}

	got, err := NewFile(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Articles) != 1 || got.Articles[0] != want.Articles[0] {
		t.Errorf("articles = %+v", got.Articles)
	}
	if len(got.Events) != 1 || got.Events[0] != want.Events[0] {
		t.Errorf("events = %+v", got.Events)
	}
}

func TestFile_BlobCarriesVersion(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "journal.json"))
	if err := f.Flush(Snapshot{}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(f.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"version": 1`) {
		t.Errorf("blob missing version field:\n%s", data)
	}
}

func TestFile_ChecksumTracksWrites(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "journal.json"))
	if f.LastChecksum() != "" {
		t.Error("fresh backend reports a checksum")
	}
	if err := f.Flush(Snapshot{}); err != nil {
		t.Fatal(err)
	}
	first := f.LastChecksum()
	if first == "" {
		t.Fatal("no checksum after flush")
	}
	if err := f.Flush(Snapshot{Events: []models.Event{{ID: 1, Name: "n", Date: "2025-01-01"}}}); err != nil {
		t.Fatal(err)
	}
	if f.LastChecksum() == first {
		t.Error("checksum unchanged after different flush")
	}
}

func TestFile_CorruptBlobIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFile(path).Load(); err == nil {
		t.Fatal("expected decode error for corrupt blob")
	}
}

func TestFile_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(filepath.Join(dir, "journal.json"))
	for i := 0; i < 3; i++ {
		if err := f.Flush(Snapshot{}); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".journal-tmp-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestOpen_BackendKinds(t *testing.T) {
	dir := t.TempDir()

	b, err := Open(BackendFile, filepath.Join(dir, "j.json"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.(*File); !ok {
		t.Errorf("Open(file) = %T", b)
	}

	b, err = Open(BackendSQLite, filepath.Join(dir, "j.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.(*SQLite); !ok {
		t.Errorf("Open(sqlite) = %T", b)
	}
	b.Close()

	if _, err := Open("redis", ""); err == nil {
		t.Error("unknown backend accepted")
	}
}

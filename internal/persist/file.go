package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gaocuixia/running-journal/internal/checksum"
)

// fileEnvelope wraps a snapshot with a version field so future format
// changes can migrate old blobs in place.
type fileEnvelope struct {
	Version int `json:"version"`
	Snapshot
}

const fileFormatVersion = 1

// File persists the journal as a single JSON blob. Writes are atomic
// (tmp file, fsync, rename) so a crash never leaves a torn snapshot.
type File struct {
	path string

	mu      sync.Mutex
	lastSum string // checksum of the blob this process last wrote
}

// NewFile creates a file backend storing its blob at path. The file is
// created on first flush; a missing file yields the bootstrap state.
func NewFile(path string) *File {
	return &File{path: path}
}

// Load reads the persisted snapshot. When no blob exists yet it returns
// the sample articles and an empty event collection.
func (f *File) Load() (Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{Articles: SeedArticles()}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("persist: read %s: %w", f.path, err)
	}

	var env fileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Snapshot{}, fmt.Errorf("persist: decode %s: %w", f.path, err)
	}

	f.mu.Lock()
	f.lastSum = checksum.Sum(data)
	f.mu.Unlock()
	return env.Snapshot, nil
}

// Flush atomically replaces the blob with the given snapshot.
func (f *File) Flush(snap Snapshot) error {
	env := fileEnvelope{Version: fileFormatVersion, Snapshot: snap}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("persist: encode snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".journal-tmp-*")
	if err != nil {
		return fmt.Errorf("persist: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("persist: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("persist: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persist: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("persist: rename: %w", err)
	}
	success = true

	f.mu.Lock()
	f.lastSum = checksum.Sum(data)
	f.mu.Unlock()
	return nil
}

// Close is a no-op; the file backend holds no open handles.
func (f *File) Close() error { return nil }

// Path returns the blob location, used by the watcher.
func (f *File) Path() string { return f.path }

// LastChecksum reports the digest of the blob this process last wrote
// or loaded. The watcher compares it against on-disk content to tell
// self-writes from external edits.
func (f *File) LastChecksum() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSum
}

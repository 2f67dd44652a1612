package persist

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gaocuixia/running-journal/internal/checksum"
)

// ReloadFunc receives the freshly loaded snapshot after an external edit
// of the journal blob.
type ReloadFunc func(snap Snapshot)

// Watch observes the file backend's blob with fsnotify and calls reload
// when something other than this process rewrites it. Self-writes are
// recognized by comparing the on-disk digest with the backend's last
// written checksum. Runs until ctx is cancelled.
//
// Editors often replace files via rename, so the parent directory is
// watched rather than the file itself, and events are debounced briefly
// to coalesce write bursts.
func Watch(ctx context.Context, f *File, logger *slog.Logger, reload ReloadFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(f.Path())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("path", f.Path()))

	var debounce *time.Timer
	var debounceCh <-chan time.Time
	schedule := func() {
		if debounce == nil {
			debounce = time.NewTimer(200 * time.Millisecond)
			debounceCh = debounce.C
		} else {
			debounce.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-debounceCh:
			handleChange(f, logger, reload)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != f.Path() {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func handleChange(f *File, logger *slog.Logger, reload ReloadFunc) {
	data, err := os.ReadFile(f.Path())
	if err != nil {
		logger.Warn("watcher: read failed", slog.String("error", err.Error()))
		return
	}
	if checksum.Sum(data) == f.LastChecksum() {
		return // our own flush
	}

	snap, err := f.Load()
	if err != nil {
		logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
		return
	}
	logger.Info("watcher: external change, journal reloaded",
		slog.Int("articles", len(snap.Articles)),
		slog.Int("events", len(snap.Events)))
	if reload != nil {
		reload(snap)
	}
}

package content

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads a Library when its files change on disk.
type Watcher struct {
	lib      *Library
	debounce time.Duration
	logger   *slog.Logger

	// OnReload, if set, runs after each reload.
	OnReload func()
}

// NewWatcher creates a Watcher for lib.
func NewWatcher(lib *Library) *Watcher {
	return &Watcher{lib: lib, debounce: DefaultDebounce, logger: slog.Default()}
}

// Run watches the library directory until ctx is cancelled. It watches
// the directory rather than the files so that editors which replace a
// file by rename are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.lib.Dir()); err != nil {
		return fmt.Errorf("watching %s: %w", w.lib.Dir(), err)
	}
	w.logger.Info("watching content", "dir", w.lib.Dir())

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			w.logger.Debug("content changed", "file", filepath.Base(ev.Name), "op", ev.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("content watcher error", "error", err)

		case <-timer.C:
			w.lib.Reload()
			if w.OnReload != nil {
				w.OnReload()
			}
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	switch filepath.Base(ev.Name) {
	case AffirmationsFile, ResourcesFile:
	default:
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}

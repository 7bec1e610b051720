package cache

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is invoked after an external change to a cache document
// settles. name is the document name (e.g. "tasks").
type ChangeCallback func(name string)

// Watch starts an fsnotify watcher on the cache directory and reports
// document changes made by other processes sharing the cache, until ctx is
// cancelled. ownChecksum, when non-nil, returns the digest of the last
// write this process issued for a document; events whose on-disk content
// still matches it are our own renames and are dropped.
//
// Events are debounced per document for a short settle window, since an
// atomic replace can surface as several filesystem events.
func Watch(ctx context.Context, d *Dir, logger *slog.Logger, ownChecksum func(name string) string, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(d.root); err != nil {
		return err
	}

	logger.Info("cache watcher: started", slog.String("root", d.root))

	const settle = 200 * time.Millisecond
	pending := make(map[string]bool)
	var settleTimer *time.Timer
	var settleCh <-chan time.Time

	schedule := func() {
		if settleTimer == nil {
			settleTimer = time.NewTimer(settle)
			settleCh = settleTimer.C
		} else {
			settleTimer.Reset(settle)
		}
	}

	flush := func() {
		for name := range pending {
			delete(pending, name)

			cur, err := d.Checksum(name)
			if err != nil {
				logger.Warn("cache watcher: checksum failed",
					slog.String("doc", name), slog.String("error", err.Error()))
				continue
			}
			if ownChecksum != nil && cur != "" && cur == ownChecksum(name) {
				continue
			}
			logger.Debug("cache watcher: external change", slog.String("doc", name))
			if cb != nil {
				cb(name)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			logger.Info("cache watcher: stopped")
			return nil

		case <-settleCh:
			flush()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			base := filepath.Base(ev.Name)
			if !strings.HasSuffix(base, ".json") || strings.HasPrefix(base, ".") {
				continue
			}
			pending[strings.TrimSuffix(base, ".json")] = true
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("cache watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

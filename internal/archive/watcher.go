package archive

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called after a watcher-driven archive change.
// kind is "imported".
type EventCallback func(kind string, name string)

// Watch starts an fsnotify watcher on the exchange directory and imports
// dropped *.json documents until ctx is cancelled. Writes are debounced so a
// document being streamed to disk is imported once, after it settles. It
// calls cb (if non-nil) after each successful import.
func Watch(ctx context.Context, db *DB, dir string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("exchange_dir", dir))

	// pending holds paths awaiting their debounce window.
	pending := make(map[string]bool)
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	scheduleFlush := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(200 * time.Millisecond)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			for path := range pending {
				delete(pending, path)
				if err := importFile(db, path, logger); err != nil {
					logger.Warn("watcher: import failed",
						slog.String("path", path),
						slog.String("error", err.Error()))
					continue
				}
				if cb != nil {
					cb("imported", docName(path))
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".json") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				pending[ev.Name] = true
				scheduleFlush()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", err.Error()))
		}
	}
}

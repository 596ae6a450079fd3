package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is how long the watcher waits for filesystem
// events to settle before invoking its handler. Viewers rewrite the document
// with a temp-file-plus-rename sequence, which surfaces as a short burst of
// events rather than a single write.
const DefaultDebounceInterval = 150 * time.Millisecond

// Watcher monitors the selection document and invokes OnChange when events
// on it settle. The parent directory is watched rather than the file itself
// so replace-by-rename keeps triggering after the inode changes.
type Watcher struct {
	// Path of the selection document.
	Path string

	// Debounce overrides DefaultDebounceInterval when positive.
	Debounce time.Duration

	// OnChange runs after a settled burst of events. Errors are logged and
	// watching continues, except for context cancellation.
	OnChange func(context.Context) error

	Logger *slog.Logger
}

func (w *Watcher) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

func (w *Watcher) debounce() time.Duration {
	if w.Debounce > 0 {
		return w.Debounce
	}
	return DefaultDebounceInterval
}

// Run watches until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	logger := w.logger()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(w.Path)
	dir := filepath.Dir(target)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", dir, err)
	}

	logger.Info("Watching selection document", "path", target, "debounce", w.debounce().String())

	var debounceTimer *time.Timer
	pending := false

	for {
		var debounceC <-chan time.Time
		if debounceTimer != nil {
			debounceC = debounceTimer.C
		}

		select {
		case <-ctx.Done():
			logger.Info("Stopping selection watch", "reason", ctx.Err())
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !shouldTriggerSync(event.Op) {
				continue
			}
			pending = true
			w.scheduleSync(&debounceTimer)
		case err, ok := <-watcher.Errors:
			if !ok || err == nil {
				continue
			}
			logger.Error("Watcher error", "error", err)
		case <-debounceC:
			stopTimer(&debounceTimer)
			if !pending {
				continue
			}
			pending = false
			if handlerErr := w.OnChange(ctx); handlerErr != nil {
				logger.Error("Selection change handler failed", "error", handlerErr)
				if errors.Is(handlerErr, context.Canceled) {
					return handlerErr
				}
			}
		}
	}
}

func shouldTriggerSync(op fsnotify.Op) bool {
	return op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}

func (w *Watcher) scheduleSync(timer **time.Timer) {
	if *timer == nil {
		*timer = time.NewTimer(w.debounce())
		return
	}
	if !(*timer).Stop() {
		select {
		case <-(*timer).C:
		default:
		}
	}
	(*timer).Reset(w.debounce())
}

func stopTimer(timer **time.Timer) {
	if *timer == nil {
		return
	}
	if !(*timer).Stop() {
		select {
		case <-(*timer).C:
		default:
		}
	}
	*timer = nil
}

package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher calls OnChange once a burst of writes to one file has
// settled. The parent directory is watched so editors that replace the file
// by rename are still seen.
type ConfigWatcher struct {
	path     string
	debounce time.Duration
	onChange func()
	logger   *slog.Logger
}

// NewConfigWatcher creates a watcher for path. A zero debounce means 300ms.
func NewConfigWatcher(path string, debounce time.Duration, onChange func(), logger *slog.Logger) *ConfigWatcher {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigWatcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}
}

// Run watches until ctx is cancelled. It fails only when the watch cannot
// be set up.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("config watcher started", "path", w.path)

	tick := w.debounce / 3
	if tick <= 0 {
		tick = w.debounce
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var pending time.Time
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("config watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				pending = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= w.debounce {
				pending = time.Time{}
				w.fire()
			}
		}
	}
}

func (w *ConfigWatcher) fire() {
	defer func() {
		if err := recover(); err != nil {
			w.logger.Error("config change handler panic recovered", "error", err)
		}
	}()
	w.logger.Debug("config file changed", "path", w.path)
	w.onChange()
}

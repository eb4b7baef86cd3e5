package classpolicy

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a class policy file for changes and reloads it into the
// target Policy, debouncing bursts of filesystem events (editors often emit
// several events per save).
type Watcher struct {
	path    string
	target  *Policy
	logger  *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
}

// NewWatcher creates a Watcher for the given policy file path.
func NewWatcher(path string, target *Policy, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{path: path, target: target, logger: logger, debounce: 150 * time.Millisecond}
}

// Run watches the file until ctx is cancelled. It is a blocking call meant
// to be run in its own goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("class policy watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	doc, err := LoadFile(w.path)
	if err != nil {
		w.logger.Error("class policy reload failed", "path", w.path, "error", err)
		return
	}
	w.target.Reload(doc)
	classes := make([]string, 0, len(doc.Classes))
	for c := range doc.Classes {
		classes = append(classes, c)
	}
	w.logger.Info("class policy reloaded", "path", w.path, "classes", strings.Join(classes, ","))
}

// Package watch re-runs a function when any of a set of files changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jackzampolin/chapsplit/internal/svcctx"
)

// DefaultDebounce is used when no positive debounce is configured.
const DefaultDebounce = 500 * time.Millisecond

// Func is invoked once per quiet period after a change. Its context carries
// a logger tagged with the trigger number.
type Func func(ctx context.Context) error

// Watcher triggers Func when one of Paths is written, created or renamed.
// The parent directories are watched so that editors and TeX engines that
// replace files rather than rewrite them are still seen.
type Watcher struct {
	Paths    []string
	Debounce time.Duration
	Fn       Func
}

// Run blocks until ctx is cancelled. Errors from Fn are logged and do not
// stop the watcher; a failed run is retried on the next change.
func (w *Watcher) Run(ctx context.Context) error {
	logger := svcctx.LoggerFrom(ctx)

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	targets := make(map[string]bool, len(w.Paths))
	dirs := make(map[string]bool)
	for _, p := range w.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	logger.Info("watching for changes", "paths", w.Paths, "debounce", debounce)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var runs int
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(ev.Name)] || !relevant(ev.Op) {
				continue
			}
			logger.Debug("input changed", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)

		case <-timer.C:
			runs++
			runLogger := logger.With("trigger", runs)
			if err := w.Fn(svcctx.WithLogger(ctx, runLogger)); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				runLogger.Error("run failed", "error", err)
			}
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename)
}

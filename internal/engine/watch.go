package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchFunc receives the result of every discovery run made while watching.
type WatchFunc func(result *DiscoveryResult, err error)

// Watch compiles the schema dir once, then recompiles whenever a matching
// file is written, created, removed or renamed. Bursts of events within
// debounce trigger a single run. Watch returns when ctx is done.
func (e *Engine) Watch(ctx context.Context, debounce time.Duration, fn WatchFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := e.watchDir(watcher, e.schemaDir); err != nil {
		return fmt.Errorf("failed to watch schema dir: %w", err)
	}

	fn(e.Discover(ctx, DiscoveryOptions{}))

	e.logger.Info("watching for changes", "dir", e.schemaDir, "debounce", debounce)
	e.watchLoop(ctx, watcher, debounce, fn)
	return nil
}

// watchDir recursively adds a directory to the watcher.
func (e *Engine) watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		// Skip hidden directories
		if path != dir && len(d.Name()) > 0 && d.Name()[0] == '.' {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// watchLoop handles file system events.
func (e *Engine) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration, fn WatchFunc) {
	// Debounce timer; fire is nil while no run is pending
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// New directories are watched as they appear
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := e.watchDir(watcher, event.Name); err != nil {
						e.logger.Warn("failed to watch directory", "dir", event.Name, "error", err)
					}
					continue
				}
			}

			if !e.Matches(event.Name) || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			e.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			fn(e.Discover(ctx, DiscoveryOptions{}))

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			e.logger.Warn("watcher error", "error", err)
		}
	}
}

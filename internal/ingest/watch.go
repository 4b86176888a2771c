package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/huangsam/trackstat/internal/contract"
)

// DefaultDebounce groups the bursts of events a single save produces.
const DefaultDebounce = 250 * time.Millisecond

// Watch calls onChange each time the file at path is written, until ctx is done.
// The parent directory is watched so editors that replace the file are still seen.
// Errors from onChange are logged and watching continues.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func(context.Context) error) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed creating file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	contract.LogInfo("watching %s for changes", abs)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				contract.LogDebug("change on %s: %s", abs, ev.Op)
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			contract.LogWarn("file watcher error", err)
		case <-timer.C:
			if err := onChange(ctx); err != nil {
				contract.LogWarn(fmt.Sprintf("failed to handle change of %s", abs), err)
			}
		}
	}
}

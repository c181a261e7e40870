package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadSettle absorbs the burst of events editors produce for one save.
const reloadSettle = 150 * time.Millisecond

// Watch reloads path whenever it changes and hands every valid config to
// onChange. Invalid edits are logged and skipped. It blocks until ctx is done.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func(*Config)) error {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so atomic renames and late file creation are seen.
	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	var settle *time.Timer
	reload := make(chan struct{}, 1)
	defer func() {
		if settle != nil {
			settle.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if settle != nil {
				settle.Stop()
			}
			settle = time.AfterFunc(reloadSettle, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			res, err := LoadFromPath(target)
			if err != nil {
				logger.Warn("config reload failed", "path", target, "err", err)
				continue
			}
			logger.Info("config reloaded", "path", target)
			onChange(res.Config)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("config watcher error", "err", err)
		}
	}
}

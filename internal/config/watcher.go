package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 250 * time.Millisecond

// Watch reloads the config whenever labbot.yaml changes and calls onReload
// with the new values. Editors often write a file in several steps, so
// reloads are debounced. A file that fails to parse is logged and the previous
// config stays active.
func Watch(ctx context.Context, logger *slog.Logger, onReload func(LabCfg)) error {
	configDir := Dir()
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsWatcher.Close()

	// Watch the directory, editors replace the file instead of writing it.
	if err = fsWatcher.Add(configDir); err != nil {
		return err
	}

	target := filepath.Clean(filepath.Join(configDir, FileName))
	var debounce *time.Timer
	reload := make(chan struct{}, 1)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			if err := Load(configDir); err != nil {
				logger.Warn("Config reload failed, keeping previous config", slog.Any("error", err))
				continue
			}
			logger.Info("Config reloaded", slog.String("path", target))
			if onReload != nil {
				onReload(Get())
			}
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Config watcher error", slog.Any("error", err))
		}
	}
}

package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/stitch/internal/logging"
)

// reloadDelay debounces bursts of writes from editors.
const reloadDelay = 100 * time.Millisecond

// Watch reloads filename whenever it changes and passes the result to fn
// until ctx is cancelled. The parent directory is watched so that files
// replaced by rename are picked up. A failed reload is passed to fn as
// an error; the caller decides whether to keep its previous config.
func Watch(ctx context.Context, filename string, fn func(*Config, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(filename)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger := logging.Logger()
	logger.Info("config: watching", slog.String("path", abs))

	var timer *time.Timer
	var reload <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("config: watcher stopped")
			return nil

		case <-reload:
			reload = nil
			cfg, err := LoadFile(abs)
			if err != nil {
				logger.Warn("config: reload failed", slog.String("error", err.Error()))
			} else {
				logger.Debug("config: reloaded", slog.String("path", abs))
			}
			fn(cfg, err)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
			} else {
				timer.Reset(reloadDelay)
			}
			reload = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("config: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

package config

// Watcher reloads mutable settings when the config file is rewritten on
// disk. Only settings that are safe to swap at runtime are propagated;
// listen address and database path changes require a restart.

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/josephwere/NeuroEdge/internal/logger"
)

// flushDuration absorbs the multiple write events editors emit per save.
const flushDuration = 25 * time.Millisecond

type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	log     logger.Logger
	onLoad  func(*Config)
}

// NewWatcher watches the directory containing path for writes to the
// config file itself. onLoad receives each successfully parsed config.
func NewWatcher(path string, log logger.Logger, onLoad func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify new watcher error: %w", err)
	}
	dir := filepath.Dir(filepath.Clean(path))
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("fsnotify add error for dir %q: %w", dir, err)
	}
	return &Watcher{
		path:    filepath.Clean(path),
		watcher: fsw,
		log:     log,
		onLoad:  onLoad,
	}, nil
}

// Watch blocks until ctx is cancelled, reloading on changes.
func (w *Watcher) Watch(ctx context.Context) error {
	defer w.watcher.Close()

	var flush *time.Timer
	flushC := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if flush != nil {
				flush.Stop()
			}
			flush = time.AfterFunc(flushDuration, func() {
				select {
				case flushC <- struct{}{}:
				default:
				}
			})
		case <-flushC:
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warning("ConfigWatcher", "watcher error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warning("ConfigWatcher", "reload skipped, config invalid", map[string]interface{}{
			"path":  w.path,
			"error": err.Error(),
		})
		return
	}
	w.log.Info("ConfigWatcher", "configuration reloaded", map[string]interface{}{
		"path": w.path,
	})
	w.onLoad(cfg)
}

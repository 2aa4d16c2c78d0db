// Package watch reloads a ROM file when it changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrogolib/log"
)

// DefaultDelay is the time to wait for further changes before a reload.
// Editors and build tools often write a file in several steps.
const DefaultDelay = 100 * time.Millisecond

// ReloadFunc receives the new program image.
type ReloadFunc func(program []byte) error

// Watcher watches a ROM file and passes the new content to a reload
// function after the file changed.
type Watcher struct {
	logger  *log.Logger
	path    string
	loader  *loader.Loader
	reload  ReloadFunc
	delay   time.Duration
	watcher *fsnotify.Watcher
}

// New starts watching the directory of the ROM file. Run has to be called
// to process the change notifications.
func New(logger *log.Logger, path string, reload ReloadFunc) (*Watcher, error) {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := watcher.Watch(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching directory of %s: %w", path, err)
	}

	return &Watcher{
		logger:  logger,
		path:    path,
		loader:  loader.New(),
		reload:  reload,
		delay:   DefaultDelay,
		watcher: watcher,
	}, nil
}

// SetDelay sets the time to wait after the last change before reloading.
func (w *Watcher) SetDelay(delay time.Duration) {
	w.delay = delay
}

// Run processes change notifications until the context is cancelled. The
// watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-reload:
			reload = nil
			w.reloadFile()

		case ev := <-w.watcher.Event:
			if ev == nil {
				return nil
			}
			if filepath.Clean(ev.Name) == w.path && !ev.IsAttrib() {
				w.logger.Debug("ROM file changed", log.String("event", ev.String()))
				reload = time.After(w.delay)
			}

		case err := <-w.watcher.Error:
			if err != nil {
				w.logger.Warn("File watcher error", log.Err(err))
			}
		}
	}
}

func (w *Watcher) reloadFile() {
	program, err := w.loader.Load(w.path)
	if err != nil {
		w.logger.Error("Reloading ROM failed", log.Err(err))
		return
	}
	if err := w.reload(program); err != nil {
		w.logger.Error("Reloading ROM failed", log.Err(err))
		return
	}
	w.logger.Info("ROM reloaded", log.String("file", w.path))
}

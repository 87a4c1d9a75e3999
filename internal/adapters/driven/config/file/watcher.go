package file

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
	"github.com/custodia-labs/pipewrench/internal/logger"
)

// PromptWatcher reloads a prompt store whenever a prompt file in its
// directory is created, written, renamed or removed.
type PromptWatcher struct {
	watcher *fsnotify.Watcher
	store   driven.PromptStore
	dir     string

	// OnReload is called after each reload with the changed file name.
	OnReload func(name string)
}

// NewPromptWatcher creates a watcher for the directory holding the prompts.
// The directory must exist.
func NewPromptWatcher(store driven.PromptStore, dir string) (*PromptWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}

	return &PromptWatcher{
		watcher: w,
		store:   store,
		dir:     dir,
	}, nil
}

// Run processes file events until ctx is cancelled or the watcher is closed.
func (w *PromptWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isPromptFile(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			w.store.Reload()
			name := strings.TrimSuffix(filepath.Base(event.Name), promptExt)
			logger.Debug("prompt %q changed, reloaded", name)
			if w.OnReload != nil {
				w.OnReload(name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("prompt watcher: %v", err)
		}
	}
}

// Close stops the watcher.
func (w *PromptWatcher) Close() error {
	return w.watcher.Close()
}

func isPromptFile(path string) bool {
	return filepath.Ext(path) == promptExt
}

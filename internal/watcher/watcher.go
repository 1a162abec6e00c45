// Package watcher keeps a project's vector store in sync with its folder.
// It watches the project tree with fsnotify and refreshes changed files
// after a short debounce window, so editor save bursts trigger one
// re-embed instead of several.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/regulaware/dossier-cli/internal/core/domain"
	"github.com/regulaware/dossier-cli/internal/core/ports/driven"
	"github.com/regulaware/dossier-cli/internal/core/ports/driving"
	"github.com/regulaware/dossier-cli/internal/logger"
)

// DefaultDebounce is the quiet period required after the last event on a
// file before it is refreshed.
const DefaultDebounce = 500 * time.Millisecond

// Watcher refreshes a project's embeddings as files change on disk.
type Watcher struct {
	ingester driving.IngestService
	parser   driven.DocumentParser
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher. A non-positive debounce uses DefaultDebounce.
func New(ingester driving.IngestService, parser driven.DocumentParser, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		ingester: ingester,
		parser:   parser,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
	}
}

// Watch blocks watching the project folder until the context is cancelled.
// New subdirectories are added to the watch set as they appear.
func (w *Watcher) Watch(ctx context.Context, project domain.Project) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := addTree(fsw, project.Path); err != nil {
		return fmt.Errorf("watch project tree: %w", err)
	}

	logger.Info("Watching %s for changes", project.Path)

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fsw, project, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// handleEvent routes one filesystem event. Directory creations extend the
// watch set; relevant file events schedule a debounced refresh.
func (w *Watcher) handleEvent(ctx context.Context, fsw *fsnotify.Watcher, project domain.Project, event fsnotify.Event) {
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addTree(fsw, event.Name); err != nil {
				logger.Warn("Cannot watch new directory %s: %v", event.Name, err)
			}
			return
		}
	}

	if !w.parser.Supported(event.Name) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.schedule(ctx, project, event.Name)
}

// schedule arms (or re-arms) the debounce timer for a path.
func (w *Watcher) schedule(ctx context.Context, project domain.Project, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}

	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}

		logger.Debug("Refreshing %s", path)
		if err := w.ingester.RefreshFile(ctx, project.Name, path); err != nil {
			logger.Warn("Refresh %s failed: %v", path, err)
			return
		}
		logger.Info("Refreshed %s", filepath.Base(path))
	})
}

// cancelPending stops all armed debounce timers.
func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}

// addTree registers a directory and all its non-hidden subdirectories.
func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

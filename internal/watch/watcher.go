// Package watch re-ingests files in a directory as they change. It
// backs the `ingest --watch` mode: create and write events are
// debounced per path and replayed through the ingest service with
// upsert semantics, so an edited file replaces its indexed content.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// DefaultDebounce is how long a path must stay quiet before it is
// re-ingested. Editors fire several writes per save.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches one directory (non-recursive) and feeds changed
// files to the ingest service.
type Watcher struct {
	ingester driving.IngestService
	dir      string
	debounce time.Duration

	mu       sync.Mutex
	inner    *fsnotify.Watcher
	pending  map[string]*time.Timer
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}
}

// New creates a watcher over dir. debounce <= 0 takes the default.
func New(ingester driving.IngestService, dir string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	inner, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := inner.Add(dir); err != nil {
		inner.Close()
		return nil, err
	}

	return &Watcher{
		ingester: ingester,
		dir:      dir,
		debounce: debounce,
		inner:    inner,
		pending:  make(map[string]*time.Timer),
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins processing events. Returns immediately.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.loop(ctx)
	logger.Info("Watching %s for document changes", w.dir)
}

// Stop shuts the watcher down and waits for in-flight ingests.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.inner.Close()
	})
	w.wg.Wait()
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.inner.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.inner.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// handleEvent schedules a debounced ingest for create and write events
// on regular, non-hidden files.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if isHidden(event.Name) {
		return
	}
	if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[event.Name]; ok {
		timer.Stop()
	}
	path := event.Name
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case <-w.stopCh:
			return
		default:
		}

		if _, err := w.ingester.IngestFile(ctx, path); err != nil {
			logger.Warn("Re-ingesting %s failed: %v", path, err)
			return
		}
		logger.Info("Re-ingested %s", path)
	})
}

// isHidden reports whether any path element starts with a dot.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." || part == "" {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

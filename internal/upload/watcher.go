package upload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler receives files arriving in the drop directory.
type Handler func(ctx context.Context, file File)

// Watcher turns a directory into a drop zone: files created there are read
// and handed to the handler as upload events. Type filtering stays with the
// gate downstream, so unsupported files are ignored the same way a rejected
// drop is.
type Watcher struct {
	dir     string
	handler Handler
	fsw     *fsnotify.Watcher

	// pollInterval and maxWait bound the stability poll that waits for a
	// dropped file to finish being written.
	pollInterval time.Duration
	maxWait      time.Duration
}

// NewWatcher creates a Watcher on dir.
func NewWatcher(dir string, handler Handler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &Watcher{
		dir:          dir,
		handler:      handler,
		fsw:          fsw,
		pollInterval: 50 * time.Millisecond,
		maxWait:      5 * time.Second,
	}, nil
}

// Run processes drop-directory events until the context is canceled.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			// Each drop settles on its own so one slow writer never holds up
			// the event queue.
			go w.process(ctx, event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Error("Drop directory watch error", "error", err)
		}
	}
}

// Close stops watching the directory.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// process reads one dropped file and hands it to the handler.
func (w *Watcher) process(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		slog.Error("Error inspecting dropped file", "path", path, "error", err)
		return
	}
	if info.IsDir() {
		return
	}

	if err := w.awaitStable(ctx, path); err != nil {
		slog.Error("Error waiting for dropped file to settle", "path", path, "error", err)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Error reading dropped file", "path", path, "error", err)
		return
	}

	name := filepath.Base(path)
	w.handler(ctx, File{
		Name:        name,
		ContentType: ContentTypeForExt(filepath.Ext(name)),
		Data:        data,
	})
}

// awaitStable polls the file size until two consecutive reads agree, so a
// file still being written is not read half-way through.
func (w *Watcher) awaitStable(ctx context.Context, path string) error {
	deadline := time.Now().Add(w.maxWait)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	lastSize := int64(-1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if info.Size() == lastSize {
				return nil
			}
			lastSize = info.Size()
			if time.Now().After(deadline) {
				return fmt.Errorf("still growing after %s", w.maxWait)
			}
		}
	}
}

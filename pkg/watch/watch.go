// Package watch re-runs a whispy program whenever its source file changes.
package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the file must stay quiet before a re-run.
const DefaultDebounce = 100 * time.Millisecond

// RunFunc executes the program at path. A returned error is logged and
// watching continues.
type RunFunc func(ctx context.Context, path string) error

// Watcher monitors one file.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	run      RunFunc
	stdout   io.Writer
	stderr   io.Writer
	Debounce time.Duration

	mu   sync.Mutex
	runs uint64
}

// New creates a watcher for path. The containing directory is watched so
// editors that replace the file on save are still seen.
func New(path string, run RunFunc, stdout, stderr io.Writer) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:  fsWatcher,
		path:     abs,
		run:      run,
		stdout:   stdout,
		stderr:   stderr,
		Debounce: DefaultDebounce,
	}, nil
}

// Runs returns how many times the program has been run.
func (w *Watcher) Runs() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

// Run executes the program once, then again after every change, until ctx is
// cancelled. It closes the underlying watcher before returning.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logInfo("watching %s", w.path)
	w.execute(ctx)

	timer := time.NewTimer(w.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.Debounce)
			pending = true

		case <-timer.C:
			pending = false
			w.logInfo("%s changed, re-running", filepath.Base(w.path))
			w.execute(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logError("watcher error: %v", err)
		}
	}
}

func (w *Watcher) execute(ctx context.Context) {
	w.mu.Lock()
	w.runs++
	w.mu.Unlock()

	if err := w.run(ctx, w.path); err != nil {
		w.logError("%v", err)
	}
}

func (w *Watcher) logInfo(format string, args ...any) {
	fmt.Fprintf(w.stdout, "[WATCH] "+format+"\n", args...)
}

func (w *Watcher) logError(format string, args ...any) {
	fmt.Fprintf(w.stderr, "[WATCH ERROR] "+format+"\n", args...)
}

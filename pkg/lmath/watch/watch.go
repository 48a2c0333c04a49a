// Package watch re-runs a script whenever it changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sambeau/lmath/pkg/lmath/logger"
)

// DefaultDebounce is the quiet period used when none is given.
const DefaultDebounce = 100 * time.Millisecond

// Watcher monitors one script file and calls OnChange after it is written.
type Watcher struct {
	watcher  *fsnotify.Watcher
	script   string
	debounce time.Duration
	onChange func(path string)

	// Track last change time to debounce rapid changes
	mu         sync.Mutex
	lastChange time.Time
	runs       uint64
}

// New creates a watcher for script. onChange runs on the watcher's
// goroutine, so runs never overlap.
func New(script string, debounce time.Duration, onChange func(path string)) (*Watcher, error) {
	abs, err := filepath.Abs(script)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", script, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  fsWatcher,
		script:   abs,
		debounce: debounce,
		onChange: onChange,
	}, nil
}

// Start begins watching. The script's directory is watched rather than the
// file itself, since editors often replace a file instead of writing it.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.script)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logger.Info().Str("file", w.script).Dur("debounce", w.debounce).Msg("watching script")

	go w.eventLoop(ctx)
	return nil
}

// eventLoop processes file system events
func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) || !w.accept(time.Now()) {
				continue
			}
			logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("script changed")
			w.onChange(w.script)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Error().Err(err).Msg("watcher error")
		}
	}
}

// relevant reports whether event is a write or create of the script.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == w.script
}

// accept applies the debounce: a change within the quiet period of the
// last accepted one is dropped.
func (w *Watcher) accept(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.lastChange.IsZero() && now.Sub(w.lastChange) < w.debounce {
		return false
	}
	w.lastChange = now
	w.runs++
	return true
}

// Runs returns how many changes have triggered OnChange.
func (w *Watcher) Runs() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

// Close stops the watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

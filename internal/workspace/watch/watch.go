// Package watch notifies a callback when files in a set of watched
// directories change on disk (cmd wires it to the skill roots), so a running
// session can pick up edits made in another process without a restart.
package watch

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nextlevelbuilder/vtgo/internal/obs/log"
)

// Watcher debounces fsnotify events across a set of directories into a
// single OnChange callback.
type Watcher struct {
	debounce time.Duration
	onChange func()

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	watched map[string]struct{}
}

// New creates a Watcher. debounce coalesces bursts of events (e.g. an editor
// save that touches several files) into one onChange call; if debounce <= 0
// a default of 250ms is used.
func New(debounce time.Duration, onChange func()) *Watcher {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &Watcher{debounce: debounce, onChange: onChange, watched: make(map[string]struct{})}
}

// Start begins watching the given directories. It's a no-op if already
// started. Non-existent directories are skipped rather than erroring, since
// workspace layout is sparse (not every workspace has a skills/ dir, etc.).
func (w *Watcher) Start(ctx context.Context, dirs ...string) error {
	w.mu.Lock()
	if w.fsw != nil {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.fsw = fsw
	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.mu.Unlock()

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			logger.Warn("Watch", "Failed to watch directory", map[string]interface{}{
				"dir":   dir,
				"error": err.Error(),
			})
		}
	}

	w.wg.Add(1)
	go w.loop(watchCtx)
	return nil
}

// Add registers an additional directory to watch after Start.
func (w *Watcher) Add(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw == nil {
		return nil
	}
	if _, ok := w.watched[dir]; ok {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	w.watched[dir] = struct{}{}
	return nil
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	fsw := w.fsw
	w.fsw = nil
	w.mu.Unlock()

	var err error
	if fsw != nil {
		err = fsw.Close()
	}
	w.wg.Wait()
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	w.mu.Lock()
	fsw := w.fsw
	w.mu.Unlock()
	if fsw == nil {
		return
	}

	var timerMu sync.Mutex
	var timer *time.Timer
	schedule := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, w.onChange)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch", "fsnotify error", map[string]interface{}{"error": err.Error()})
		}
	}
}

// Package watcher monitors the htm config file so preference and filter
// changes made outside the running TUI take effect without a restart.
//
// fsnotify is the primary mechanism; a stat-polling fallback covers
// filesystems where inotify is unreliable. Changes are debounced because
// editors typically produce several events per save.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Defaults.
const (
	DefaultDebounce     = 250 * time.Millisecond
	DefaultPollInterval = 2 * time.Second
)

// Common errors.
var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// WithOnError sets the callback invoked on watch errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// Watcher monitors one file for changes.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	forcePoll    bool
	onError      func(error)

	fsWatcher *fsnotify.Watcher
	polling   bool
	lastMtime time.Time
	lastSize  int64

	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	mu      sync.Mutex

	debounceTimer *time.Timer
	changeCh      chan struct{}
}

// New creates a watcher for the given path. The file does not have to
// exist yet.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounce,
		pollInterval: DefaultPollInterval,
		onError:      func(error) {},
		changeCh:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}
	w.ctx, w.cancel = context.WithCancel(context.Background())

	if info, err := os.Stat(w.path); err == nil {
		w.lastMtime = info.ModTime()
		w.lastSize = info.Size()
	}

	w.polling = w.forcePoll
	if !w.polling {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			w.polling = true
		} else {
			// Watch the directory, not the file: atomic saves replace
			// the inode and a file watch would go stale.
			if err := fsw.Add(filepath.Dir(w.path)); err != nil {
				fsw.Close()
				w.polling = true
			} else {
				w.fsWatcher = fsw
				go w.runFsnotify()
			}
		}
	}
	if w.polling {
		go w.runPolling()
	}

	w.started = true
	return nil
}

// Stop stops watching. The change channel is left open; consumers parked
// on Changed() are released by process teardown.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.cancel()
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.started = false
}

// Changed returns a channel that receives after the file changes and the
// debounce window elapses.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// IsPolling reports whether the fallback polling mode is active.
func (w *Watcher) IsPolling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

// Path returns the watched file path.
func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) runFsnotify() {
	target := filepath.Base(w.path)
	events := w.fsWatcher.Events
	errs := w.fsWatcher.Errors

	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			switch {
			case ev.Op&fsnotify.Remove != 0:
				w.onError(ErrFileRemoved)
			case ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.scheduleNotify()
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) runPolling() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				if os.IsNotExist(err) && !w.lastMtime.IsZero() {
					w.onError(ErrFileRemoved)
				}
				continue
			}
			w.mu.Lock()
			changed := info.ModTime().After(w.lastMtime) || info.Size() != w.lastSize
			if changed {
				w.lastMtime = info.ModTime()
				w.lastSize = info.Size()
			}
			w.mu.Unlock()
			if changed {
				w.scheduleNotify()
			}
		}
	}
}

// scheduleNotify restarts the debounce timer; only the last event in a
// burst reaches the change channel.
func (w *Watcher) scheduleNotify() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		started := w.started
		w.mu.Unlock()
		if !started {
			return
		}
		select {
		case w.changeCh <- struct{}{}:
		default:
		}
	})
}

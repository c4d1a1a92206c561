// Package watcher reloads a local dataset file when it changes, using
// fsnotify with a polling fallback.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/tempmap/pkg/debug"
	"github.com/vanderheijden86/tempmap/pkg/loader"
	"github.com/vanderheijden86/tempmap/pkg/model"
)

const (
	// DefaultPollInterval is how often the file is stat'ed in polling mode.
	DefaultPollInterval = 2 * time.Second

	// ReloadTimeout bounds each re-read of the dataset.
	ReloadTimeout = 30 * time.Second
)

// Common errors.
var (
	ErrRemoteSource = errors.New("only local dataset files can be watched")
	ErrFileRemoved  = errors.New("dataset file was removed")
	ErrPermission   = errors.New("permission denied")
)

// ReloadFunc receives the re-read dataset, or the error that prevented it.
// It is called from the watcher's goroutines, never concurrently.
type ReloadFunc func(ds *model.Dataset, err error)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets how long the file must be quiet before a reload.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithPollInterval sets the stat interval used in polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		w.pollInterval = d
	}
}

// WithForcePoll skips fsnotify. TEMPMAP_FORCE_POLL=1 does the same.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) {
		w.forcePoll = force
	}
}

// stamp is what polling compares between ticks.
type stamp struct {
	mtime time.Time
	size  int64
}

// Watcher re-loads one dataset file each time it settles after a change.
type Watcher struct {
	path         string
	reload       ReloadFunc
	debounce     time.Duration
	pollInterval time.Duration
	forcePoll    bool
	polling      bool

	debouncer *Debouncer
	loadMu    sync.Mutex // serializes reload calls

	mu      sync.Mutex
	last    stamp
	missing bool

	done chan struct{}
}

// WatchDataset watches the dataset file at path and hands every re-read
// dataset, or the reason it could not be read, to fn. The file must exist.
// Watching stops when ctx is done; Done is closed once it has.
func WatchDataset(ctx context.Context, path string, fn ReloadFunc, opts ...Option) (*Watcher, error) {
	if loader.IsURL(path) {
		return nil, ErrRemoteSource
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:         abs,
		reload:       fn,
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)

	st, err := statFile(abs)
	if err != nil {
		if os.IsPermission(err) {
			return nil, ErrPermission
		}
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	w.last = st

	var fsw *fsnotify.Watcher
	w.polling = w.forcePoll || envBool("TEMPMAP_FORCE_POLL")
	if !w.polling {
		// The directory is watched so atomic rename-over writes are seen.
		fsw, err = fsnotify.NewWatcher()
		if err == nil {
			if err = fsw.Add(filepath.Dir(abs)); err != nil {
				fsw.Close()
				fsw = nil
			}
		}
		if fsw == nil {
			debug.Log("fsnotify unavailable for %s, polling: %v", abs, err)
			w.polling = true
		}
	}
	debug.Log("watching %s (polling=%v)", abs, w.polling)

	go w.run(ctx, fsw)
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// IsPolling reports whether the watcher fell back to stat polling.
func (w *Watcher) IsPolling() bool {
	return w.polling
}

// Done is closed once the watcher has stopped.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	defer close(w.done)
	defer w.debouncer.Cancel()

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
		tick   <-chan time.Time
	)
	if fsw != nil {
		defer fsw.Close()
		events, errs = fsw.Events, fsw.Errors
	} else {
		t := time.NewTicker(w.pollInterval)
		defer t.Stop()
		tick = t.C
	}

	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			debug.Log("stopped watching %s", w.path)
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			// An event is authoritative even when mtime and size look unchanged.
			w.check(ctx, true)

		case err, ok := <-errs:
			if !ok {
				return
			}
			debug.Log("watch %s: %v", w.path, err)

		case <-tick:
			w.check(ctx, false)
		}
	}
}

// check stats the file and schedules a reload when it changed. Removal and
// permission problems are reported once per occurrence.
func (w *Watcher) check(ctx context.Context, force bool) {
	st, err := statFile(w.path)

	w.mu.Lock()
	if err != nil {
		report := !w.missing
		w.missing = true
		w.mu.Unlock()
		if !report {
			return
		}
		switch {
		case os.IsNotExist(err):
			w.deliver(nil, ErrFileRemoved)
		case os.IsPermission(err):
			w.deliver(nil, ErrPermission)
		default:
			w.deliver(nil, err)
		}
		return
	}
	changed := force || w.missing || !st.mtime.Equal(w.last.mtime) || st.size != w.last.size
	w.last = st
	w.missing = false
	w.mu.Unlock()

	if changed {
		w.debouncer.Trigger(func() { w.load(ctx) })
	}
}

func (w *Watcher) load(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	lctx, cancel := context.WithTimeout(ctx, ReloadTimeout)
	defer cancel()
	ds, err := loader.Load(lctx, w.path)
	if err != nil {
		debug.Log("reload %s: %v", w.path, err)
	} else {
		debug.Log("reloaded %s: %d records", w.path, len(ds.Records))
	}
	w.deliver(ds, err)
}

func (w *Watcher) deliver(ds *model.Dataset, err error) {
	w.loadMu.Lock()
	defer w.loadMu.Unlock()
	w.reload(ds, err)
}

func statFile(path string) (stamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return stamp{}, err
	}
	return stamp{mtime: info.ModTime(), size: info.Size()}, nil
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

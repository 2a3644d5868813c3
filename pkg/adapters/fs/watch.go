package fs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/forge/pkg/core"
)

// DebounceWindow coalesces the bursts of events a single atomic write produces.
const DebounceWindow = 50 * time.Millisecond

// Watch emits an event whenever the file backing key is written, replaced or
// removed. The data directory is watched rather than the file, since atomic
// writes swap the file out through a rename.
func (s *Store) Watch(ctx context.Context, key string) (<-chan core.Event, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.Path, err)
	}

	events := make(chan core.Event)
	w := &watchLoop{
		store:     s,
		key:       key,
		path:      filepath.Clean(path),
		watcher:   watcher,
		events:    events,
		debouncer: newDebouncer(DebounceWindow),
	}

	s.setWatcherActive(true)
	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		s.reportError(fmt.Errorf("watcher: %w", err))
	}))

	return events, nil
}

type watchLoop struct {
	store     *Store
	key       string
	path      string
	watcher   *fsnotify.Watcher
	events    chan core.Event
	debouncer *debouncer
}

// run is the main event loop of a watcher.
func (w *watchLoop) run(ctx context.Context) (err error) {
	logger := w.store.config.Logger
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				logger.Error("watcher panic", "error", err)
			}
		}
	}()
	defer close(w.events)
	defer w.store.setWatcherActive(false)
	defer w.watcher.Close()

	err = w.loop(ctx)

	// Wait for in-flight timers before the events channel is closed.
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *watchLoop) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handle(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.store.config.Logger.Error("fsnotify error", "error", wErr)
			w.store.reportError(wErr)
		}
	}
}

func (w *watchLoop) handle(ctx context.Context, event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	var eType core.EventType
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		eType = core.EventReload
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		eType = core.EventRemove
	default:
		return
	}

	w.store.config.Logger.Debug("event received", "key", w.key, "op", event.Op.String())
	w.debouncer.add(core.Event{
		Type:      eType,
		ID:        w.key,
		Timestamp: time.Now().Unix(),
	}, func(e core.Event) {
		// The channel may be closed under us if shutdown timed out.
		defer func() { _ = recover() }()
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}

func (s *Store) reportError(err error) {
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
	}
}

// debouncer delivers only the last event of a burst for each id.
type debouncer struct {
	window time.Duration

	mu      sync.Mutex
	wg      sync.WaitGroup
	timers  map[string]*time.Timer
	pending map[string]core.Event
	stopped bool
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{
		window:  window,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]core.Event),
	}
}

func (d *debouncer) add(e core.Event, deliver func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending[e.ID] = e
	if t, ok := d.timers[e.ID]; ok {
		if t.Stop() {
			t.Reset(d.window)
			return
		}
	}

	d.wg.Add(1)
	d.timers[e.ID] = time.AfterFunc(d.window, func() {
		defer d.wg.Done()

		d.mu.Lock()
		latest, ok := d.pending[e.ID]
		delete(d.pending, e.ID)
		delete(d.timers, e.ID)
		d.mu.Unlock()

		if ok {
			deliver(latest)
		}
	})
}

// stopAndWait rejects new events and waits for scheduled deliveries.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for id, t := range d.timers {
		if t.Stop() {
			delete(d.timers, id)
			delete(d.pending, id)
			d.wg.Done()
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}

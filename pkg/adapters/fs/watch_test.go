package fs_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/forge/pkg/adapters/fs"
	"github.com/aretw0/forge/pkg/core"
)

func waitEvent(t *testing.T, events <-chan core.Event, timeout time.Duration) (core.Event, bool) {
	t.Helper()
	select {
	case e, ok := <-events:
		return e, ok
	case <-time.After(timeout):
		return core.Event{}, false
	}
}

func TestStore_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newStore(t, fs.Config{})
	events, err := s.Watch(ctx, core.DefaultStorageKey)
	require.NoError(t, err)

	// Give the watcher goroutine time to start.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, s.Set(ctx, core.DefaultStorageKey, "[]"))

	e, ok := waitEvent(t, events, 2*time.Second)
	require.True(t, ok, "expected an event after write")
	assert.Equal(t, core.EventReload, e.Type)
	assert.Equal(t, core.DefaultStorageKey, e.ID)

	t.Run("Other Keys Are Ignored", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "other", "[]"))
		_, ok := waitEvent(t, events, 300*time.Millisecond)
		assert.False(t, ok, "writes to other keys must not be reported")
	})

	t.Run("Removal", func(t *testing.T) {
		path, _ := s.PathFor(core.DefaultStorageKey)
		require.NoError(t, os.Remove(path))

		e, ok := waitEvent(t, events, 2*time.Second)
		require.True(t, ok)
		assert.Equal(t, core.EventRemove, e.Type)
	})

	t.Run("Closes On Cancel", func(t *testing.T) {
		cancel()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case _, ok := <-events:
				if !ok {
					return
				}
			case <-deadline:
				t.Fatal("events channel not closed after cancel")
			}
		}
	})
}

func TestStore_WatchBurstIsDebounced(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newStore(t, fs.Config{})
	events, err := s.Watch(ctx, core.DefaultStorageKey)
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Set(ctx, core.DefaultStorageKey, "[]"))
	}

	_, ok := waitEvent(t, events, 2*time.Second)
	require.True(t, ok)

	count := 1
	for {
		if _, ok := waitEvent(t, events, 300*time.Millisecond); !ok {
			break
		}
		count++
	}
	assert.Less(t, count, 5, "burst should be coalesced")
}

func TestStore_WatchActiveState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newStore(t, fs.Config{})

	events, err := s.Watch(ctx, core.DefaultStorageKey)
	require.NoError(t, err)
	assert.True(t, s.State().(fs.StoreState).WatcherActive)

	cancel()
	for range events {
	}
	assert.Eventually(t, func() bool {
		return !s.State().(fs.StoreState).WatcherActive
	}, time.Second, 10*time.Millisecond)
}

func TestStore_WatchInvalidKey(t *testing.T) {
	s := newStore(t, fs.Config{})
	_, err := s.Watch(context.Background(), "../x")
	assert.Error(t, err)
}

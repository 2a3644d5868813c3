package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path          string     `json:"path"`
	ReadOnly      bool       `json:"read_only"`
	WatcherActive bool       `json:"watcher_active"`
	Watchers      int        `json:"watchers"`
	LastWrite     *time.Time `json:"last_write,omitempty"`
	LastWriteSize int        `json:"last_write_size,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StoreState{
		Path:          s.Path,
		ReadOnly:      s.config.ReadOnly,
		WatcherActive: s.watchers > 0,
		Watchers:      s.watchers,
		LastWrite:     s.lastWrite,
		LastWriteSize: s.lastWriteSize,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "fs-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)

func (s *Store) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if active {
		s.watchers++
	} else if s.watchers > 0 {
		s.watchers--
	}
}

func (s *Store) recordWrite(size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.lastWrite = &now
	s.lastWriteSize = size
}

// Package memory provides a thread-safe in-memory core.Storage with an
// optional size quota, mirroring the limits of browser local storage.
package memory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/forge/pkg/core"
)

// ErrQuotaExceeded is returned by Set when the write would exceed the quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Store is an in-memory key-value store.
type Store struct {
	quota int // bytes over all keys and values; zero means unlimited

	mu   sync.RWMutex
	data map[string]string
	used int
}

// Option configures a Store.
type Option func(*Store)

// WithQuota limits the total size, in bytes, of all keys and values.
func WithQuota(bytes int) Option {
	return func(s *Store) { s.quota = bytes }
}

// WithData seeds the store.
func WithData(data map[string]string) Option {
	return func(s *Store) {
		for k, v := range data {
			s.data[k] = v
			s.used += len(k) + len(v)
		}
	}
}

// New creates a new memory store.
func New(opts ...Option) *Store {
	s := &Store{data: make(map[string]string)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return "", fmt.Errorf("memory get %q: %w", key, core.ErrNotFound)
	}
	return v, nil
}

// Set stores a value by key. The previous value is kept if the quota would
// be exceeded.
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.used + len(key) + len(value)
	if old, ok := s.data[key]; ok {
		used -= len(key) + len(old)
	}
	if s.quota > 0 && used > s.quota {
		return fmt.Errorf("memory set %q: %w (%d > %d bytes)", key, ErrQuotaExceeded, used, s.quota)
	}

	s.data[key] = value
	s.used = used
	return nil
}

// Delete removes a key from the store.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.data[key]; ok {
		s.used -= len(key) + len(old)
		delete(s.data, key)
	}
}

// Keys returns all keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data))
}

// Used returns the bytes currently stored.
func (s *Store) Used() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.used
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Keys  int `json:"keys"`
	Used  int `json:"used_bytes"`
	Quota int `json:"quota_bytes,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreState{Keys: len(s.data), Used: s.used, Quota: s.quota}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string { return "memory-store" }

var _ core.Storage = (*Store)(nil)

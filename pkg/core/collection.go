package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CollectionConfig holds the configuration of a Collection.
type CollectionConfig struct {
	Key    string           // Storage key; defaults to DefaultStorageKey.
	Logger *slog.Logger     // Optional.
	Now    func() time.Time // Clock used for LastModified; defaults to time.Now.
	NewID  func() string    // Identity generator; defaults to UUID v4.
}

// Collection is the durable, ordered set of archived use cases.
// It is the sole reader and writer of its storage key.
type Collection struct {
	storage Storage
	key     string
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string

	mu        sync.RWMutex
	items     []UseCase
	degraded  error
	seq       int
	lastWrite *time.Time
	lastErr   error
}

// OpenCollection builds a collection over storage and loads it.
// Loading never fails: a missing or unparsable value yields an empty collection
// and the reason is kept in Degraded.
func OpenCollection(ctx context.Context, storage Storage, cfg CollectionConfig) *Collection {
	c := &Collection{
		storage: storage,
		key:     cfg.Key,
		logger:  cfg.Logger,
		now:     cfg.Now,
		newID:   cfg.NewID,
	}
	if c.key == "" {
		c.key = DefaultStorageKey
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}

	c.Reload(ctx)
	return c
}

// Reload re-reads the collection from storage, replacing the in-memory copy.
func (c *Collection) Reload(ctx context.Context) {
	items, degraded := c.read(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.degraded = degraded
}

func (c *Collection) read(ctx context.Context) ([]UseCase, error) {
	raw, err := c.storage.Get(ctx, c.key)
	if errors.Is(err, ErrNotFound) {
		c.logger.Debug("no stored collection, starting empty", "key", c.key)
		return []UseCase{}, fmt.Errorf("%w: key %q is absent", ErrReadDegraded, c.key)
	}
	if err != nil {
		c.logger.Warn("stored collection unreadable, starting empty", "key", c.key, "error", err)
		return []UseCase{}, fmt.Errorf("%w: %w", ErrReadDegraded, err)
	}
	if strings.TrimSpace(raw) == "" {
		return []UseCase{}, fmt.Errorf("%w: key %q is empty", ErrReadDegraded, c.key)
	}

	var items []UseCase
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.logger.Warn("stored collection corrupt, starting empty", "key", c.key, "error", err)
		return []UseCase{}, fmt.Errorf("%w: %w", ErrReadDegraded, err)
	}

	loaded := make([]UseCase, 0, len(items))
	for _, it := range items {
		loaded = append(loaded, it.Clone())
	}
	c.logger.Debug("collection loaded", "key", c.key, "count", len(loaded))
	return loaded, nil
}

// Load returns the current collection, most recently created first.
// The returned records are copies.
func (c *Collection) Load() []UseCase {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]UseCase, len(c.items))
	for i, it := range c.items {
		out[i] = it.Clone()
	}
	return out
}

// Get returns a copy of the record with the given identity.
func (c *Collection) Get(id string) (UseCase, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(id); i >= 0 {
		return c.items[i].Clone(), true
	}
	return UseCase{}, false
}

// Len returns the number of records.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Storage returns the medium the collection persists to.
func (c *Collection) Storage() Storage { return c.storage }

// Key returns the storage key of the collection.
func (c *Collection) Key() string { return c.key }

// Degraded returns why the last load found no usable data, or nil.
func (c *Collection) Degraded() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.degraded
}

// Upsert archives record.
//
// A record without identity (or with one unknown to the collection) is inserted
// at the front; a known identity is replaced in place. LastModified is set to
// the current time. The whole collection is persisted before returning.
//
// On a storage failure the error wraps ErrPersistenceFailure, the in-memory
// collection keeps the change, and the returned record still carries its
// identity so that a retry updates rather than duplicates.
func (c *Collection) Upsert(ctx context.Context, record UseCase) (UseCase, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := record.Clone()
	if stored.Identity == "" {
		stored.Identity = c.uniqueID()
	}
	stored.LastModified = c.now().UTC()

	next := slices.Clone(c.items)
	if i := c.indexOf(stored.Identity); i >= 0 {
		next[i] = stored
	} else {
		next = append([]UseCase{stored}, next...)
	}
	c.items = next

	if err := c.persist(ctx, "upsert"); err != nil {
		return stored.Clone(), err
	}
	c.logger.Debug("use case archived", "id", stored.Identity, "count", len(c.items))
	return stored.Clone(), nil
}

// Remove deletes the record with the given identity.
// It reports whether a record was removed; an unknown identity is a no-op and
// does not touch storage.
func (c *Collection) Remove(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false, nil
	}
	c.items = slices.Delete(slices.Clone(c.items), i, i+1)

	if err := c.persist(ctx, "remove"); err != nil {
		return true, err
	}
	c.logger.Debug("use case removed", "id", id, "count", len(c.items))
	return true, nil
}

// persist re-serializes the entire collection. Callers hold c.mu.
func (c *Collection) persist(ctx context.Context, op string) error {
	data, err := json.Marshal(c.items)
	if err == nil {
		err = c.storage.Set(ctx, c.key, string(data))
	}
	if err != nil {
		c.lastErr = err
		c.logger.Error("failed to persist collection", "op", op, "key", c.key, "error", err)
		return &PersistenceError{Op: op, Key: c.key, Err: err}
	}

	now := c.now()
	c.lastWrite = &now
	c.lastErr = nil
	return nil
}

// uniqueID draws identities until one is free, suffixing a process-wide
// sequence number if the generator keeps colliding.
func (c *Collection) uniqueID() string {
	id := c.newID()
	for attempt := 0; c.indexOf(id) >= 0; attempt++ {
		if attempt < 3 {
			id = c.newID()
			continue
		}
		c.seq++
		id = fmt.Sprintf("%s-%d", id, c.seq)
	}
	return id
}

func (c *Collection) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(c.items, func(u UseCase) bool { return u.Identity == id })
}

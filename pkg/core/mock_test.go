package core_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/forge/pkg/core"
)

// MockStorage implements core.Storage in memory.
// Setting FailWrites makes every Set fail without touching the stored value.
type MockStorage struct {
	mu         sync.Mutex
	values     map[string]string
	writes     int
	FailWrites error
	FailReads  error
}

func NewMockStorage() *MockStorage {
	return &MockStorage{values: make(map[string]string)}
}

func (m *MockStorage) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailReads != nil {
		return "", m.FailReads
	}
	v, ok := m.values[key]
	if !ok {
		return "", fmt.Errorf("key %q: %w", key, core.ErrNotFound)
	}
	return v, nil
}

func (m *MockStorage) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.values[key] = value
	m.writes++
	return nil
}

func (m *MockStorage) Raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MockStorage) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *MockStorage) ComponentType() string { return "mock" }

func (m *MockStorage) State() any { return len(m.values) }

// fixedClock returns a clock that advances one second per call.
func fixedClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

// sequentialIDs returns a deterministic identity generator.
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("uc-%d", n)
	}
}

func openTestCollection(storage core.Storage) *core.Collection {
	return core.OpenCollection(context.Background(), storage, core.CollectionConfig{
		Now:   fixedClock(),
		NewID: sequentialIDs(),
	})
}

// recorder captures notifications.
type recorder struct {
	mu      sync.Mutex
	notices []notice
}

type notice struct {
	Message string
	Kind    core.NoticeKind
}

func (r *recorder) Notify(message string, kind core.NoticeKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice{message, kind})
}

func (r *recorder) last() notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return notice{}
	}
	return r.notices[len(r.notices)-1]
}

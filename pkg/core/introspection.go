package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// CollectionState exposes internal state for observability.
type CollectionState struct {
	Key         string     `json:"key"`
	Size        int        `json:"size"`
	StorageType string     `json:"storage_type"`
	Degraded    string     `json:"degraded,omitempty"`
	LastWrite   *time.Time `json:"last_write,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// State implements introspection.Introspectable.
func (c *Collection) State() any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	storageType := "storage"
	if comp, ok := c.storage.(introspection.Component); ok {
		storageType = comp.ComponentType()
	}

	st := CollectionState{
		Key:         c.key,
		Size:        len(c.items),
		StorageType: storageType,
		LastWrite:   c.lastWrite,
	}
	if c.degraded != nil {
		st.Degraded = c.degraded.Error()
	}
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	return st
}

// ComponentType implements introspection.Component.
func (c *Collection) ComponentType() string {
	return "collection"
}

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Active     string          `json:"active,omitempty"`
	Exporter   bool            `json:"exporter"`
	Collection CollectionState `json:"collection"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	return ServiceState{
		Active:     s.Active(),
		Exporter:   s.exporter != nil,
		Collection: s.collection.State().(CollectionState),
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
var _ introspection.Introspectable = (*Collection)(nil)
var _ introspection.Component = (*Collection)(nil)

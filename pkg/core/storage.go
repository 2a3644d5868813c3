package core

import "context"

// DefaultStorageKey is the single key under which the collection is stored.
const DefaultStorageKey = "useCases"

// Storage defines the contract of the durable key-value medium.
// Values are opaque strings; the collection stores a JSON array under one key.
// Adhering to this interface keeps the core independent of the underlying
// medium (files, SQL, object storage, memory).
type Storage interface {
	// Get returns the value stored under key, or an error wrapping ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
}

// Watchable defines an interface for storages that can report external changes.
type Watchable interface {
	// Watch emits an event each time the value under key changes.
	// The channel is closed when ctx is cancelled.
	Watch(ctx context.Context, key string) (<-chan Event, error)
}

// NoticeKind classifies a notification shown to the user.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
	NoticeError   NoticeKind = "error"
)

// Notifier displays transient, fire-and-forget messages.
type Notifier interface {
	Notify(message string, kind NoticeKind)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Exporter hands rendered text to an external collaborator (e.g. the clipboard)
// verbatim.
type Exporter interface {
	Export(ctx context.Context, text string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string, kind NoticeKind)

func (f NotifierFunc) Notify(message string, kind NoticeKind) { f(message, kind) }

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

type nopNotifier struct{}

func (nopNotifier) Notify(string, NoticeKind) {}

type alwaysConfirm struct{}

func (alwaysConfirm) Confirm(string) bool { return true }

package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrReadOnly      = errors.New("storage is in read-only mode")
	ErrNotFound      = errors.New("not found")
	ErrUnknownField  = errors.New("unknown field")
	ErrTitleRequired = errors.New("use case title is required")

	// ErrPersistenceFailure marks a durable-storage write that did not happen.
	// The in-memory collection keeps the change; the stored copy may be stale.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrReadDegraded marks a startup read that found nothing usable.
	// It is never returned to callers, only recorded on the collection.
	ErrReadDegraded = errors.New("persisted collection unavailable")
)

// PersistenceError reports a failed write of the collection.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %q: %v: %v", e.Op, e.Key, ErrPersistenceFailure, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrPersistenceFailure) match any PersistenceError.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistenceFailure
}

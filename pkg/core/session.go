package core

import (
	"slices"
	"sync"
)

// Session owns the working buffer: the single use case being edited.
//
// Every mutator installs and returns a fresh snapshot; snapshots handed out
// earlier are never modified. Out-of-range indices are ignored.
type Session struct {
	mu  sync.RWMutex
	buf UseCase
}

// NewSession creates a session whose buffer is a copy of existing, or the
// default-empty record when existing is nil.
func NewSession(existing *UseCase) *Session {
	s := &Session{}
	s.Initialize(existing)
	return s
}

// Initialize replaces the working buffer unconditionally.
func (s *Session) Initialize(existing *UseCase) {
	buf := NewUseCase()
	if existing != nil {
		buf = existing.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = buf
}

// Snapshot returns a copy of the working buffer.
func (s *Session) Snapshot() UseCase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf.Clone()
}

// SetField replaces one scalar field.
func (s *Session) SetField(field Field, value string) UseCase {
	return s.apply(func(u UseCase) UseCase { return u.With(field, value) })
}

// SetStepAt replaces the step at index i.
func (s *Session) SetStepAt(i int, value string) UseCase {
	return s.apply(func(u UseCase) UseCase {
		u.Steps = setAt(u.Steps, i, value)
		return u
	})
}

// AppendStep adds an empty step at the end.
func (s *Session) AppendStep() UseCase {
	return s.apply(func(u UseCase) UseCase {
		u.Steps = append(u.Steps, "")
		return u
	})
}

// RemoveStepAt deletes the step at index i.
func (s *Session) RemoveStepAt(i int) UseCase {
	return s.apply(func(u UseCase) UseCase {
		u.Steps = removeAt(u.Steps, i)
		return u
	})
}

// SetSteps replaces the whole step list.
func (s *Session) SetSteps(steps []string) UseCase {
	return s.apply(func(u UseCase) UseCase {
		u.Steps = cloneList(steps)
		return u
	})
}

// SetConstraintAt replaces the constraint at index i.
func (s *Session) SetConstraintAt(i int, value string) UseCase {
	return s.apply(func(u UseCase) UseCase {
		u.Constraints = setAt(u.Constraints, i, value)
		return u
	})
}

// AppendConstraint adds an empty constraint at the end.
func (s *Session) AppendConstraint() UseCase {
	return s.apply(func(u UseCase) UseCase {
		u.Constraints = append(u.Constraints, "")
		return u
	})
}

// RemoveConstraintAt deletes the constraint at index i.
func (s *Session) RemoveConstraintAt(i int) UseCase {
	return s.apply(func(u UseCase) UseCase {
		u.Constraints = removeAt(u.Constraints, i)
		return u
	})
}

// SetConstraints replaces the whole constraint list.
func (s *Session) SetConstraints(constraints []string) UseCase {
	return s.apply(func(u UseCase) UseCase {
		u.Constraints = cloneList(constraints)
		return u
	})
}

// apply runs fn on a private copy of the buffer and installs the result.
func (s *Session) apply(fn func(UseCase) UseCase) UseCase {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.buf.Clone())
	s.buf = next
	return next.Clone()
}

func setAt(items []string, i int, value string) []string {
	if i < 0 || i >= len(items) {
		return items
	}
	items[i] = value
	return items
}

func removeAt(items []string, i int) []string {
	if i < 0 || i >= len(items) {
		return items
	}
	return slices.Delete(items, i, i+1)
}

// Package core holds the use case domain: the document model, the durable
// collection, the edit session and the service that coordinates them with the
// presentation layer.
package core

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// UseCase is the central entity of the domain.
// It is a value object: every mutation produces a new copy.
type UseCase struct {
	// Identity is empty until the first successful archive.
	Identity       string    `json:"identity,omitempty" yaml:"identity,omitempty"`
	Title          string    `json:"title" yaml:"title"`
	Actor          string    `json:"actor" yaml:"actor"`
	Description    string    `json:"description" yaml:"description"`
	Preconditions  string    `json:"preconditions" yaml:"preconditions"`
	Steps          []string  `json:"steps" yaml:"steps"`
	Postconditions string    `json:"postconditions" yaml:"postconditions"`
	Constraints    []string  `json:"constraints" yaml:"constraints"`
	LastModified   time.Time `json:"lastModified,omitzero" yaml:"lastModified,omitempty"`
}

// NewUseCase returns the default-empty record: blank text fields and a single
// empty entry in both ordered lists.
func NewUseCase() UseCase {
	return UseCase{
		Steps:       []string{""},
		Constraints: []string{""},
	}
}

// Clone returns a deep copy that shares no slices with u.
// Empty lists stay non-nil so they serialize as [] rather than null.
func (u UseCase) Clone() UseCase {
	c := u
	c.Steps = cloneList(u.Steps)
	c.Constraints = cloneList(u.Constraints)
	return c
}

// Persisted reports whether the record has been archived at least once.
func (u UseCase) Persisted() bool {
	return u.Identity != ""
}

// With returns a copy of u with one scalar field replaced.
// Unknown fields leave the copy unchanged.
func (u UseCase) With(field Field, value string) UseCase {
	c := u.Clone()
	switch field {
	case FieldTitle:
		c.Title = value
	case FieldActor:
		c.Actor = value
	case FieldDescription:
		c.Description = value
	case FieldPreconditions:
		c.Preconditions = value
	case FieldPostconditions:
		c.Postconditions = value
	}
	return c
}

// Value returns the current value of a scalar field.
func (u UseCase) Value(field Field) string {
	switch field {
	case FieldTitle:
		return u.Title
	case FieldActor:
		return u.Actor
	case FieldDescription:
		return u.Description
	case FieldPreconditions:
		return u.Preconditions
	case FieldPostconditions:
		return u.Postconditions
	}
	return ""
}

// Validate performs the only check the domain knows: a title must be present.
// It is opt-in; intermediate states with empty fields are legal.
func (u UseCase) Validate() error {
	if strings.TrimSpace(u.Title) == "" {
		return ErrTitleRequired
	}
	return nil
}

// Field names a scalar (free text) field of a UseCase.
type Field string

const (
	FieldTitle          Field = "title"
	FieldActor          Field = "actor"
	FieldDescription    Field = "description"
	FieldPreconditions  Field = "preconditions"
	FieldPostconditions Field = "postconditions"
)

// Fields lists the scalar fields in form order.
var Fields = []Field{
	FieldTitle,
	FieldActor,
	FieldDescription,
	FieldPreconditions,
	FieldPostconditions,
}

// ParseField maps a user supplied name to a Field.
func ParseField(name string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(name)))
	if slices.Contains(Fields, f) {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// EventType represents the kind of change applied to the collection.
type EventType string

const (
	EventArchive EventType = "ARCHIVE"
	EventRemove  EventType = "REMOVE"
	EventReload  EventType = "RELOAD"
)

// Event represents a change in the durable collection.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	if e.ID == "" {
		return string(e.Type)
	}
	return fmt.Sprintf("%s %s", e.Type, e.ID)
}

func cloneList(items []string) []string {
	if items == nil {
		return []string{}
	}
	return slices.Clone(items)
}

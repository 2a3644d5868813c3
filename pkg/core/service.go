package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Renderer turns a use case into its text representation.
type Renderer interface {
	Render(doc UseCase) string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithNotifier sets the capability used for transient notifications.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

// WithConfirmer sets the capability asked before destructive operations.
func WithConfirmer(c Confirmer) ServiceOption {
	return func(s *Service) { s.confirmer = c }
}

// WithExporter sets where Export sends rendered text.
func WithExporter(e Exporter) ServiceOption {
	return func(s *Service) { s.exporter = e }
}

// WithLogger sets the logger for the service.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// Service coordinates the edit session and the collection on behalf of the
// presentation layer. It tracks which stored record, if any, is open.
type Service struct {
	collection *Collection
	renderer   Renderer
	session    *Session
	notifier   Notifier
	confirmer  Confirmer
	exporter   Exporter
	logger     *slog.Logger

	mu     sync.RWMutex
	active string
}

// NewService creates a new Service with a fresh, empty working buffer.
func NewService(collection *Collection, renderer Renderer, opts ...ServiceOption) *Service {
	s := &Service{
		collection: collection,
		renderer:   renderer,
		session:    NewSession(nil),
		notifier:   nopNotifier{},
		confirmer:  alwaysConfirm{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Session returns the edit session.
func (s *Service) Session() *Session { return s.session }

// Collection returns the durable collection.
func (s *Service) Collection() *Collection { return s.collection }

// Active returns the identity of the open record, or "" for a new one.
func (s *Service) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// List returns the archived use cases, most recently created first.
func (s *Service) List() []UseCase {
	return s.collection.Load()
}

// New starts editing a fresh, empty use case.
func (s *Service) New() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = ""
	s.session.Initialize(nil)
}

// Open loads an archived use case into the edit session.
func (s *Service) Open(id string) error {
	doc, ok := s.collection.Get(id)
	if !ok {
		return fmt.Errorf("open %q: %w", id, ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = doc.Identity
	s.session.Initialize(&doc)
	return nil
}

// Archive persists the working buffer.
// On success the session continues on the stored record, now carrying its
// identity. On failure the buffer is kept as is, apart from the identity that
// was assigned to it, so a retry does not create a duplicate.
func (s *Service) Archive(ctx context.Context) (UseCase, error) {
	stored, err := s.collection.Upsert(ctx, s.session.Snapshot())

	s.mu.Lock()
	switch {
	case err == nil:
		s.active = stored.Identity
		s.session.Initialize(&stored)
	case stored.Identity != "":
		buf := s.session.Snapshot()
		buf.Identity = stored.Identity
		s.active = stored.Identity
		s.session.Initialize(&buf)
	}
	s.mu.Unlock()

	if err != nil {
		s.notifier.Notify(fmt.Sprintf("Archive failed: %v", err), NoticeError)
		return stored, err
	}

	s.logger.Info("use case archived", "id", stored.Identity, "title", stored.Title)
	s.notifier.Notify("Use case archived.", NoticeSuccess)
	return stored, nil
}

// Delete removes an archived use case after confirmation.
// It reports whether a record was removed; a declined confirmation returns
// false and no error. Deleting the open record resets the session.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	doc, ok := s.collection.Get(id)
	if !ok {
		return false, nil
	}

	if !s.confirmer.Confirm(fmt.Sprintf("Delete use case %q?", DisplayTitle(doc))) {
		s.notifier.Notify("Deletion cancelled.", NoticeInfo)
		return false, nil
	}

	removed, err := s.collection.Remove(ctx, id)
	if removed && s.Active() == id {
		s.New()
	}
	if err != nil {
		s.notifier.Notify(fmt.Sprintf("Delete failed: %v", err), NoticeError)
		return removed, err
	}

	s.logger.Info("use case deleted", "id", id)
	s.notifier.Notify("Use case deleted.", NoticeSuccess)
	return removed, nil
}

// Render renders the working buffer.
func (s *Service) Render() string {
	return s.renderer.Render(s.session.Snapshot())
}

// Export hands the rendered working buffer to the exporter verbatim.
func (s *Service) Export(ctx context.Context) error {
	if s.exporter == nil {
		return errors.New("no exporter configured")
	}
	if err := s.exporter.Export(ctx, s.Render()); err != nil {
		s.notifier.Notify(fmt.Sprintf("Copy failed: %v", err), NoticeError)
		return fmt.Errorf("export: %w", err)
	}
	s.notifier.Notify("Markdown copied.", NoticeSuccess)
	return nil
}

// DisplayTitle returns the title shown in listings.
func DisplayTitle(u UseCase) string {
	if u.Title == "" {
		return "Untitled"
	}
	return u.Title
}

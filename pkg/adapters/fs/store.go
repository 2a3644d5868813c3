// Package fs implements core.Storage on the local filesystem.
//
// Each key is a JSON file inside the data directory (`<dir>/<key>.json`).
// Writes are atomic and the store can watch its files for external changes.
package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/forge/pkg/core"
)

// FileExt is the extension of every stored key.
const FileExt = ".json"

// Config holds the configuration for the filesystem store.
type Config struct {
	Path         string
	MustExist    bool // Fail Initialize instead of creating Path.
	ReadOnly     bool // Reject writes with core.ErrReadOnly.
	Logger       *slog.Logger
	ErrorHandler func(error) // Receives watcher errors; optional.
}

// Store implements core.Storage and core.Watchable using one file per key.
type Store struct {
	Path   string
	config Config

	mu            sync.RWMutex
	watchers      int
	lastWrite     *time.Time
	lastWriteSize int
}

// NewStore creates a new filesystem-backed store.
func NewStore(config Config) *Store {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		Path:   config.Path,
		config: config,
	}
}

// Initialize prepares the data directory.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.MustExist || s.config.ReadOnly {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", s.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat data path: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", s.Path)
		}
		return nil
	}

	if err := os.MkdirAll(s.Path, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// Get returns the contents of the file backing key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("fs get %q: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("fs get %q: %w", key, err)
	}
	return string(data), nil
}

// Set atomically replaces the file backing key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.config.ReadOnly {
		return fmt.Errorf("fs set %q: %w", key, core.ErrReadOnly)
	}
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.Path, 0755); err != nil {
		return fmt.Errorf("fs set %q: failed to create data directory: %w", key, err)
	}
	if err := writeFileAtomic(path, []byte(value), 0644); err != nil {
		return fmt.Errorf("fs set %q: %w", key, err)
	}

	s.config.Logger.Debug("key written", "key", key, "path", path, "bytes", len(value))
	s.recordWrite(len(value))
	return nil
}

// PathFor returns the file that backs key.
func (s *Store) PathFor(key string) (string, error) {
	return s.pathFor(key)
}

func (s *Store) pathFor(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.Path, key+FileExt), nil
}

var (
	_ core.Storage   = (*Store)(nil)
	_ core.Watchable = (*Store)(nil)
)

package forge

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/forge/internal/platform"
	"github.com/aretw0/forge/pkg/adapters/s3"
	"github.com/aretw0/forge/pkg/core"
)

// Version is the release version, set at build time with
// -ldflags "-X github.com/aretw0/forge.Version=v1.2.3".
var Version = "dev"

// --- Types ---

// UseCase is a public alias for the use case record.
type UseCase = core.UseCase

// Service is a public alias for the editing service.
type Service = core.Service

// Backend names a storage adapter.
type Backend = platform.Backend

const (
	BackendFS       = platform.BackendFS
	BackendMemory   = platform.BackendMemory
	BackendSQLite   = platform.BackendSQLite
	BackendPostgres = platform.BackendPostgres
	BackendS3       = platform.BackendS3
)

// --- Configuration ---

// Option defines a functional option for configuring forge.
type Option = platform.Option

// Config mirrors the forge.yaml project file.
type Config = platform.Config

// WithBackend selects the storage adapter by name.
func WithBackend(b Backend) Option {
	return platform.WithBackend(b)
}

// WithDataDir sets the directory of the fs backend.
func WithDataDir(dir string) Option {
	return platform.WithDataDir(dir)
}

// WithStorageKey sets the key the collection is stored under.
func WithStorageKey(key string) Option {
	return platform.WithStorageKey(key)
}

// WithLogger sets the logger for all components.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithClock sets the clock used to stamp LastModified.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithIDGenerator sets the identity generator.
func WithIDGenerator(newID func() string) Option {
	return platform.WithIDGenerator(newID)
}

// WithStorage injects a custom storage adapter, skipping backend selection.
func WithStorage(s core.Storage) Option {
	return platform.WithStorage(s)
}

// WithReadOnly rejects writes of the fs backend.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDSN sets the data source of the sql backends.
func WithDSN(dsn string) Option {
	return platform.WithDSN(dsn)
}

// WithS3 sets the bucket configuration of the s3 backend.
func WithS3(cfg s3.Config) Option {
	return platform.WithS3(cfg)
}

// WithLocale selects the rendering labels.
func WithLocale(locale string) Option {
	return platform.WithLocale(locale)
}

// WithServiceOptions forwards notifier, confirmer and exporter options to the service.
func WithServiceOptions(opts ...core.ServiceOption) Option {
	return platform.WithServiceOptions(opts...)
}

// --- Factory ---

// New creates a forge service.
func New(ctx context.Context, opts ...Option) (*Service, error) {
	return platform.New(ctx, opts...)
}

// Close releases the storage behind svc.
func Close(svc *Service) error {
	return platform.Close(svc)
}

// FindRoot looks upwards from dir for a .forge directory or a forge.yaml file.
func FindRoot(dir string) (string, error) {
	return platform.FindRoot(dir)
}

// LoadConfig reads forge.yaml from root and applies FORGE_* overrides.
func LoadConfig(root string) (Config, error) {
	cfg, err := platform.LoadConfig(root)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/forge/pkg/adapters/s3"
	"github.com/aretw0/forge/pkg/core"
)

// Backend names a storage adapter.
type Backend string

const (
	BackendFS       Backend = "fs"
	BackendMemory   Backend = "memory"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendS3       Backend = "s3"
)

// Backends lists the adapters New knows how to build.
var Backends = []Backend{BackendFS, BackendMemory, BackendSQLite, BackendPostgres, BackendS3}

// options holds the internal configuration of a forge instance.
type options struct {
	storage     core.Storage
	logger      *slog.Logger
	backend     Backend
	dataDir     string
	storageKey  string
	readOnly    bool
	mustExist   bool
	dsn         string
	s3          s3.Config
	quota       int
	locale      string
	now         func() time.Time
	newID       func() string
	errHandler  func(error)
	serviceOpts []core.ServiceOption
}

// Option defines a functional option for configuring forge.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		backend:    BackendFS,
		dataDir:    DefaultDataDir,
		storageKey: core.DefaultStorageKey,
		locale:     "en",
	}
}

// WithBackend selects the storage adapter by name. Defaults to "fs".
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithDataDir sets the directory of the fs backend and the default location
// of the sqlite database.
func WithDataDir(dir string) Option {
	return func(o *options) {
		o.dataDir = dir
	}
}

// WithStorageKey sets the key the collection is stored under.
func WithStorageKey(key string) Option {
	return func(o *options) {
		o.storageKey = key
	}
}

// WithLogger sets the logger passed to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock sets the clock used to stamp LastModified.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithIDGenerator sets the identity generator.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		o.newID = newID
	}
}

// WithStorage injects a storage, skipping the backend selection.
func WithStorage(s core.Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithReadOnly makes the fs backend reject writes with core.ErrReadOnly.
// The data directory is not created.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithMustExist fails instead of creating a missing data directory.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithDSN sets the data source of the sqlite and postgres backends.
func WithDSN(dsn string) Option {
	return func(o *options) {
		o.dsn = dsn
	}
}

// WithS3 sets the bucket configuration of the s3 backend.
func WithS3(cfg s3.Config) Option {
	return func(o *options) {
		o.s3 = cfg
	}
}

// WithQuota caps the memory backend, in bytes.
func WithQuota(bytes int) Option {
	return func(o *options) {
		o.quota = bytes
	}
}

// WithLocale selects the rendering labels ("en", "fr").
func WithLocale(locale string) Option {
	return func(o *options) {
		o.locale = locale
	}
}

// WithWatcherErrorHandler receives errors from the fs watcher.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errHandler = fn
	}
}

// WithServiceOptions forwards options to core.NewService
// (notifier, confirmer, exporter).
func WithServiceOptions(opts ...core.ServiceOption) Option {
	return func(o *options) {
		o.serviceOpts = append(o.serviceOpts, opts...)
	}
}

package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/forge/pkg/adapters/fs"
	"github.com/aretw0/forge/pkg/adapters/memory"
	"github.com/aretw0/forge/pkg/adapters/s3"
	"github.com/aretw0/forge/pkg/adapters/sqlkv"
	"github.com/aretw0/forge/pkg/core"
	"github.com/aretw0/forge/pkg/render"
)

// SQLiteFile is the database file of the sqlite backend when no DSN is set.
const SQLiteFile = "forge.db"

// New builds the storage, opens the collection and wires the service.
//
//	svc, err := platform.New(ctx, platform.WithDataDir(".forge"))
func New(ctx context.Context, opts ...Option) (*core.Service, error) {
	o := resolve(opts)

	storage, err := initStorage(ctx, o)
	if err != nil {
		return nil, err
	}

	col := core.OpenCollection(ctx, storage, core.CollectionConfig{
		Key:    o.storageKey,
		Logger: o.logger,
		Now:    o.now,
		NewID:  o.newID,
	})
	if err := col.Degraded(); err != nil {
		o.logger.Warn("collection loaded empty", "key", col.Key(), "error", err)
	}

	serviceOpts := append([]core.ServiceOption{core.WithLogger(o.logger)}, o.serviceOpts...)
	return core.NewService(col, render.New(render.LabelsFor(o.locale)), serviceOpts...), nil
}

// Init builds and initializes the storage selected by the options.
func Init(ctx context.Context, opts ...Option) (core.Storage, error) {
	return initStorage(ctx, resolve(opts))
}

// Close releases the storage behind svc, if it holds resources.
func Close(svc *core.Service) error {
	if c, ok := svc.Collection().Storage().(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func resolve(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

func initStorage(ctx context.Context, o *options) (core.Storage, error) {
	if o.storage != nil {
		return o.storage, nil
	}

	o.logger.Debug("opening storage", "backend", o.backend)

	switch o.backend {
	case BackendFS, "":
		return initFS(ctx, o)
	case BackendMemory:
		var memOpts []memory.Option
		if o.quota > 0 {
			memOpts = append(memOpts, memory.WithQuota(o.quota))
		}
		return memory.New(memOpts...), nil
	case BackendSQLite:
		dsn := o.dsn
		if dsn == "" {
			if err := os.MkdirAll(o.dataDir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
			dsn = filepath.Join(o.dataDir, SQLiteFile)
		}
		return sqlkv.Open(ctx, sqlkv.Config{Dialect: sqlkv.DialectSQLite, DSN: dsn, Logger: o.logger})
	case BackendPostgres:
		return sqlkv.Open(ctx, sqlkv.Config{Dialect: sqlkv.DialectPostgres, DSN: o.dsn, Logger: o.logger})
	case BackendS3:
		cfg := o.s3
		cfg.Logger = o.logger
		return s3.New(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown backend %q", o.backend)
	}
}

func initFS(ctx context.Context, o *options) (*fs.Store, error) {
	store := fs.NewStore(fs.Config{
		Path:         o.dataDir,
		MustExist:    o.mustExist,
		ReadOnly:     o.readOnly,
		Logger:       o.logger,
		ErrorHandler: o.errHandler,
	})
	if err := store.Initialize(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

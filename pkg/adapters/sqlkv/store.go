// Package sqlkv implements core.Storage on a SQL database.
//
// Keys live in a single kv_store table. SQLite (modernc.org/sqlite) and
// Postgres (pgx through database/sql) are supported.
package sqlkv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/aretw0/forge/pkg/core"
)

// Dialect selects the SQL flavour and driver.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const (
	maxRetries  = 5
	initialWait = 100 * time.Millisecond
	busyTimeout = 5000 // milliseconds

	schemaSQL = `CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at BIGINT NOT NULL
)`
	getSQL = `SELECT value FROM kv_store WHERE key = ?`
	setSQL = `INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	keysSQL = `SELECT key FROM kv_store ORDER BY key`
)

// Config holds the configuration of a SQL store.
type Config struct {
	Dialect Dialect
	// DSN is a file path or sqlite URI for SQLite, a connection URL for Postgres.
	DSN    string
	Logger *slog.Logger
}

// Store implements core.Storage over database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// Open connects to the database, waits for it to answer and creates the
// kv_store table if needed.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	driver, dsn, err := driverFor(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Dialect, err)
	}
	if cfg.Dialect == DialectSQLite {
		// A single writer avoids SQLITE_BUSY between pooled connections.
		conn.SetMaxOpenConns(1)
	}

	s, err := New(ctx, conn, cfg.Dialect, cfg.Logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open connection. The caller keeps ownership of db only if New
// fails.
func New(ctx context.Context, db *sql.DB, dialect Dialect, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{db: db, dialect: dialect, logger: logger}

	if err := s.pingWithRetry(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}
	return s, nil
}

func driverFor(cfg Config) (driver, dsn string, err error) {
	switch cfg.Dialect {
	case DialectSQLite:
		if cfg.DSN == "" {
			return "", "", errors.New("sqlite: empty database path")
		}
		dsn = cfg.DSN
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", dsn, busyTimeout)
		}
		return "sqlite", dsn, nil
	case DialectPostgres:
		if cfg.DSN == "" {
			return "", "", errors.New("postgres: empty DSN")
		}
		return "pgx", cfg.DSN, nil
	default:
		return "", "", fmt.Errorf("unknown sql dialect %q", cfg.Dialect)
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.rebind(getSQL), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("kv get %q: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("kv get %q: %w", key, err)
	}
	return value, nil
}

// Set inserts or replaces the value stored under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(setSQL), key, value, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	s.logger.Debug("key written", "key", key, "dialect", s.dialect, "bytes", len(value))
	return nil
}

// Keys returns all stored keys in sorted order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, keysSQL)
	if err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("kv list keys: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// pingWithRetry attempts to ping the database with exponential backoff.
func (s *Store) pingWithRetry(ctx context.Context) error {
	wait := initialWait
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = s.db.PingContext(ctx); err == nil {
			return nil
		}
		if i < maxRetries-1 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
			wait *= 2
		}
	}
	return fmt.Errorf("failed to ping database after %d retries: %w", maxRetries, err)
}

// rebind turns ? placeholders into $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Dialect   Dialect `json:"dialect"`
	OpenConns int     `json:"open_connections"`
	InUse     int     `json:"in_use"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	stats := s.db.Stats()
	return StoreState{Dialect: s.dialect, OpenConns: stats.OpenConnections, InUse: stats.InUse}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string { return "sql-store" }

var _ core.Storage = (*Store)(nil)

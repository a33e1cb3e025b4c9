/*
Package db provides the key-value backends behind the entity store.

A Store maps string keys to JSON documents. Three drivers exist: sqlite (a single
local file, the default), postgres (pgx pool) and memory (process lifetime only).
The SQL drivers create their schema with embedded goose migrations on open.
*/
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pressly/goose/v3"

	"alumnilink/internal/configs"
	"alumnilink/internal/pkg/logx"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var embedMigrations embed.FS

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("db: key not found")

// Store is a byte-level key-value store. Values are JSON documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Open returns the Store selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *configs.AppConfig) (Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case configs.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case configs.DriverPostgres:
		return OpenPostgres(ctx, cfg.DatabaseDSN)
	case configs.DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// gooseMu guards goose's package-level base FS and dialect.
var gooseMu sync.Mutex

// runMigrations applies all pending migrations for dialect from the embedded file system.
func runMigrations(ctx context.Context, sqlDB *sql.DB, dialect string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{})

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	dir := "migrations/postgres"
	if dialect == "sqlite3" {
		dir = "migrations/sqlite"
	}

	if err := goose.UpContext(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logx.Info("Database migrations applied successfully.", "dialect", dialect)
	return nil
}

// gooseLogger routes goose output through logx.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	logx.Debug(fmt.Sprintf(format, v...), "component", "goose")
}

func (gooseLogger) Fatalf(format string, v ...any) {
	logx.Fatal(fmt.Errorf(format, v...), "Migration failed", "component", "goose")
}

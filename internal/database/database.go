// Package database opens the SQL connection pool for the configured backend
// and owns everything that differs between backends: placeholder syntax,
// constraint error codes and migrations.
//
// TWO BACKENDS, ONE API:
// Both backends are reached through database/sql, so repositories are
// written once:
//   - sqlite   → modernc.org/sqlite (pure Go, no CGo), the default
//   - postgres → github.com/jackc/pgx/v5/stdlib, pgx exposed as a database/sql driver
//
// Queries are written with "?" placeholders and passed through
// Dialect.Rebind, which rewrites them to $1, $2, ... for postgres.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/sakif/todo-api/internal/config"
)

// DB wraps a sql.DB connection pool together with the dialect of the
// backend it talks to.
type DB struct {
	conn    *sql.DB
	dialect Dialect
	cfg     config.DBConfig
}

// Open connects to the backend selected by cfg.Driver and verifies the
// connection with a ping.
func Open(ctx context.Context, cfg config.DBConfig) (*DB, error) {
	var (
		conn    *sql.DB
		dialect Dialect
		err     error
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		conn, err = openSQLite(cfg.Path)
		dialect = SQLite
	case config.DriverPostgres:
		conn, err = openPostgres(cfg)
		dialect = Postgres
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database: pinging %s: %w", cfg.Driver, err)
	}

	return &DB{conn: conn, dialect: dialect, cfg: cfg}, nil
}

// openSQLite opens a sqlite database at path (":memory:" for a throwaway one).
//
// PRAGMAS IN THE DSN:
// PRAGMA statements apply to a single connection. Passing them as _pragma
// parameters makes the driver run them on every connection it opens, so they
// survive the pool recycling a connection.
//
// ONE CONNECTION:
// SQLite allows a single writer. With MaxOpenConns(1) transactions queue
// in the pool instead of failing with SQLITE_BUSY, and an in-memory
// database (which lives and dies with its connection) stays alive.
func openSQLite(path string) (*sql.DB, error) {
	dsn := "file::memory:?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("database: creating directory %s: %w", dir, err)
			}
		}
		dsn = "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("database: opening sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)
	return conn, nil
}

func openPostgres(cfg config.DBConfig) (*sql.DB, error) {
	conn, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("database: opening postgres: %w", err)
	}
	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxOpenConns)
	conn.SetConnMaxIdleTime(5 * time.Minute)
	return conn, nil
}

// Conn returns the underlying pool.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Dialect returns the SQL dialect of the backend.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Ping verifies the backend is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

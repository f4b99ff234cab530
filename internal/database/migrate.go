package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
)

// Both migration sets use tern's file format: NNN_name.sql, with the
// rollback below the separator line. Postgres migrations are executed by
// tern itself; sqlite migrations by the small runner in this file, because
// tern only speaks to a *pgx.Conn.
//
//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS

const (
	versionTable      = "schema_version"
	migrationSplitter = "---- create above / drop below ----"
)

// Migration is one versioned schema change.
type Migration struct {
	Version int32
	Name    string
	Up      string
	Down    string
}

// MigrationStatus reports how far the schema is migrated.
type MigrationStatus struct {
	Current    int32
	Migrations []Migration
}

// Latest is the version the newest migration produces.
func (s *MigrationStatus) Latest() int32 {
	return int32(len(s.Migrations))
}

// Pending reports whether migrations are still to be applied.
func (s *MigrationStatus) Pending() bool {
	return s.Current < s.Latest()
}

// Migrate applies every pending migration. It returns the version the
// schema was at before and after.
func (db *DB) Migrate(ctx context.Context) (from, to int32, err error) {
	migrations, err := db.migrations()
	if err != nil {
		return 0, 0, err
	}
	return db.MigrateTo(ctx, int32(len(migrations)))
}

// MigrateTo moves the schema up or down to the target version.
// Version 0 is an empty schema.
func (db *DB) MigrateTo(ctx context.Context, target int32) (from, to int32, err error) {
	if db.dialect == Postgres {
		return db.migratePostgres(ctx, target)
	}
	return db.migrateSQLite(ctx, target)
}

// MigrationStatus reports the current version and the known migrations.
func (db *DB) MigrationStatus(ctx context.Context) (*MigrationStatus, error) {
	migrations, err := db.migrations()
	if err != nil {
		return nil, err
	}

	var current int32
	if db.dialect == Postgres {
		err = db.withTern(ctx, func(m *tern.Migrator) error {
			current, err = m.GetCurrentVersion(ctx)
			return err
		})
	} else {
		current, err = db.sqliteVersion(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("database: reading schema version: %w", err)
	}

	return &MigrationStatus{Current: current, Migrations: migrations}, nil
}

func (db *DB) migrationFS() (fs.FS, error) {
	sub, err := fs.Sub(migrationFiles, "migrations/"+db.dialect.Name())
	if err != nil {
		return nil, fmt.Errorf("database: opening migrations for %s: %w", db.dialect.Name(), err)
	}
	return sub, nil
}

func (db *DB) migrations() ([]Migration, error) {
	fsys, err := db.migrationFS()
	if err != nil {
		return nil, err
	}
	return loadMigrations(fsys)
}

// --- postgres (tern) ---

// withTern opens a dedicated pgx connection for tern. Migrations are a
// one-off action, so they do not borrow from the database/sql pool.
func (db *DB) withTern(ctx context.Context, fn func(m *tern.Migrator) error) error {
	conn, err := pgx.Connect(ctx, db.cfg.PostgresDSN())
	if err != nil {
		return fmt.Errorf("database: connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, versionTable)
	if err != nil {
		return fmt.Errorf("database: constructing migrator: %w", err)
	}

	fsys, err := db.migrationFS()
	if err != nil {
		return err
	}
	if err := m.LoadMigrations(fsys); err != nil {
		return fmt.Errorf("database: loading migrations: %w", err)
	}

	return fn(m)
}

func (db *DB) migratePostgres(ctx context.Context, target int32) (from, to int32, err error) {
	err = db.withTern(ctx, func(m *tern.Migrator) error {
		if target < 0 || int(target) > len(m.Migrations) {
			return fmt.Errorf("database: target version %d out of range 0..%d", target, len(m.Migrations))
		}
		if from, err = m.GetCurrentVersion(ctx); err != nil {
			return fmt.Errorf("database: reading schema version: %w", err)
		}
		if err := m.MigrateTo(ctx, target); err != nil {
			return fmt.Errorf("database: migrating from %d to %d: %w", from, target, err)
		}
		to = target
		return nil
	})
	return from, to, err
}

// --- sqlite ---

var migrationName = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

// loadMigrations reads NNN_name.sql files and checks that the versions form
// the sequence 1..n without gaps.
func loadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("database: listing migrations: %w", err)
	}

	var migrations []Migration
	for _, e := range entries {
		match := migrationName.FindStringSubmatch(e.Name())
		if e.IsDir() || match == nil {
			continue
		}

		version, err := strconv.ParseInt(match[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("database: bad migration version in %s: %w", e.Name(), err)
		}

		body, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("database: reading %s: %w", e.Name(), err)
		}

		up, down, _ := strings.Cut(string(body), migrationSplitter)
		migrations = append(migrations, Migration{
			Version: int32(version),
			Name:    match[2],
			Up:      strings.TrimSpace(up),
			Down:    strings.TrimSpace(down),
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	for i, m := range migrations {
		if m.Version != int32(i+1) {
			return nil, fmt.Errorf("database: migration %d (%s) is out of sequence", m.Version, m.Name)
		}
	}
	return migrations, nil
}

func (db *DB) ensureSQLiteVersionTable(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS `+versionTable+` (version INTEGER NOT NULL)`)
	if err != nil {
		return err
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO `+versionTable+` (version)
		 SELECT 0 WHERE NOT EXISTS (SELECT 1 FROM `+versionTable+`)`)
	return err
}

func (db *DB) sqliteVersion(ctx context.Context) (int32, error) {
	if err := db.ensureSQLiteVersionTable(ctx); err != nil {
		return 0, err
	}
	var v int32
	err := db.conn.QueryRowContext(ctx, `SELECT version FROM `+versionTable).Scan(&v)
	return v, err
}

func (db *DB) migrateSQLite(ctx context.Context, target int32) (from, to int32, err error) {
	migrations, err := db.migrations()
	if err != nil {
		return 0, 0, err
	}
	if target < 0 || int(target) > len(migrations) {
		return 0, 0, fmt.Errorf("database: target version %d out of range 0..%d", target, len(migrations))
	}

	from, err = db.sqliteVersion(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("database: reading schema version: %w", err)
	}

	current := from
	for current < target {
		m := migrations[current]
		if err := db.applySQLite(ctx, m.Up, m.Version); err != nil {
			return from, current, fmt.Errorf("database: applying %03d_%s: %w", m.Version, m.Name, err)
		}
		current = m.Version
	}
	for current > target {
		m := migrations[current-1]
		if err := db.applySQLite(ctx, m.Down, m.Version-1); err != nil {
			return from, current, fmt.Errorf("database: reverting %03d_%s: %w", m.Version, m.Name, err)
		}
		current = m.Version - 1
	}

	return from, current, nil
}

// applySQLite runs one migration step and records the new version in the
// same transaction, so a failed step leaves the version untouched.
func (db *DB) applySQLite(ctx context.Context, script string, version int32) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if script != "" {
		if _, err := tx.ExecContext(ctx, script); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE `+versionTable+` SET version = ?`, version); err != nil {
		return err
	}
	return tx.Commit()
}

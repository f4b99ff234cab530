package database

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/todo-api/internal/config"
)

// newTestDB opens a fresh in-memory sqlite database. Every call gets its own
// database because the pool holds exactly one connection.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), config.DBConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.Conn().QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

// =========================================================================
// MIGRATION TESTS
// =========================================================================

func TestMigrate_AppliesAll(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	from, to, err := db.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(0), from)
	assert.Equal(t, int32(6), to)

	for _, table := range []string{"users", "user_profiles", "tags", "todos", "todo_tags", "products"} {
		assert.True(t, tableExists(t, db, table), "table %s should exist", table)
	}

	status, err := db.MigrationStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(6), status.Current)
	assert.Equal(t, int32(6), status.Latest())
	assert.False(t, status.Pending())
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, _, err := db.Migrate(ctx)
	require.NoError(t, err)

	from, to, err := db.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, from, to)
}

func TestMigrateTo_DownAndUpAgain(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, _, err := db.Migrate(ctx)
	require.NoError(t, err)

	_, to, err := db.MigrateTo(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int32(5), to)

	var n int
	err = db.Conn().QueryRow(`SELECT COUNT(*) FROM pragma_table_info('products') WHERE name = 'is_featured'`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "is_featured should be dropped at version 5")

	_, to, err = db.MigrateTo(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(0), to)
	assert.False(t, tableExists(t, db, "users"))

	_, to, err = db.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(6), to)
}

func TestMigrateTo_OutOfRange(t *testing.T) {
	db := newTestDB(t)

	_, _, err := db.MigrateTo(context.Background(), 99)
	assert.Error(t, err)
}

func TestLoadMigrations_ParsesUpAndDown(t *testing.T) {
	fsys := fstest.MapFS{
		"002_second.sql": {Data: []byte("CREATE TABLE b (id INT);\n---- create above / drop below ----\nDROP TABLE b;")},
		"001_first.sql":  {Data: []byte("CREATE TABLE a (id INT);\n---- create above / drop below ----\nDROP TABLE a;")},
		"README.md":      {Data: []byte("ignored")},
	}

	migrations, err := loadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "first", migrations[0].Name)
	assert.Equal(t, "CREATE TABLE a (id INT);", migrations[0].Up)
	assert.Equal(t, "DROP TABLE b;", migrations[1].Down)
}

func TestLoadMigrations_RejectsGap(t *testing.T) {
	fsys := fstest.MapFS{
		"001_first.sql": {Data: []byte("SELECT 1;")},
		"003_third.sql": {Data: []byte("SELECT 1;")},
	}

	_, err := loadMigrations(fsys)
	assert.Error(t, err)
}

// =========================================================================
// DIALECT TESTS
// =========================================================================

func TestRebind(t *testing.T) {
	q := `UPDATE todos SET title = ?, completed = ? WHERE id = ?`

	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, `UPDATE todos SET title = $1, completed = $2 WHERE id = $3`, Postgres.Rebind(q))
}

func TestClassify_SQLiteConstraints(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, _, err := db.Migrate(ctx)
	require.NoError(t, err)

	_, err = db.Conn().Exec(`INSERT INTO tags (id, name, created_at, updated_at) VALUES ('t1', 'go', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	_, err = db.Conn().Exec(`INSERT INTO tags (id, name, created_at, updated_at) VALUES ('t2', 'go', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.Error(t, err)
	assert.Equal(t, KindUnique, SQLite.Classify(err))

	_, err = db.Conn().Exec(`INSERT INTO todos (id, title, user_id, created_at, updated_at) VALUES ('x', 'orphan', 'nobody', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.Error(t, err)
	assert.Equal(t, KindForeignKey, SQLite.Classify(err))

	assert.Equal(t, KindOther, SQLite.Classify(errors.New("boom")))
}

func TestClassify_PostgresCodes(t *testing.T) {
	tests := []struct {
		code string
		want ErrorKind
	}{
		{"23505", KindUnique},
		{"23503", KindForeignKey},
		{"23502", KindNotNull},
		{"23514", KindCheck},
		{"08006", KindConnection},
		{"42P01", KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := &pgconn.PgError{Code: tt.code}
			assert.Equal(t, tt.want, Postgres.Classify(err))
		})
	}
}

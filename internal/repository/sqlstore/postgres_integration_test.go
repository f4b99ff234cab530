//go:build integration

package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/config"
	"github.com/sakif/todo-api/internal/database"
	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
)

// Run with:
//
//	go test -tags integration ./internal/repository/sqlstore/...
//
// Docker must be available; each test starts its own postgres container.

// newPostgresDB starts a postgres container and opens it through the same
// code path the server uses.
func newPostgresDB(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("todo"),
		postgres.WithUsername("todo"),
		postgres.WithPassword("todo-pass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminating postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := database.Open(ctx, config.DBConfig{
		Driver:       config.DriverPostgres,
		Host:         host,
		Port:         port.Int(),
		User:         "todo",
		Password:     "todo-pass",
		Name:         "todo",
		SSLMode:      "disable",
		MaxOpenConns: 4,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newPostgresStore(t *testing.T) *Store {
	t.Helper()
	db := newPostgresDB(t)
	_, _, err := db.Migrate(context.Background())
	require.NoError(t, err)
	return New(db)
}

func TestPostgres_Migrations(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	from, to, err := db.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(0), from)

	status, err := db.MigrationStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, to, status.Current)
	assert.False(t, status.Pending())

	// A second run has nothing to do.
	from, again, err := db.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, to, from)
	assert.Equal(t, to, again)

	_, down, err := db.MigrateTo(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(0), down)

	var tables int
	require.NoError(t, db.Conn().QueryRowContext(ctx,
		`SELECT count(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_name IN ('users', 'todos', 'tags', 'products', 'user_profiles', 'todo_tags')`,
	).Scan(&tables))
	assert.Zero(t, tables)
}

func TestPostgres_ConstraintMapping(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()
	u := createUser(t, s, "alice")
	createTag(t, s, "go")

	tests := []struct {
		name string
		fn   func(uow repository.UnitOfWork) error
		want error
	}{
		{
			name: "unique violation is a conflict",
			fn: func(uow repository.UnitOfWork) error {
				return uow.Tags().Add(ctx, &model.Tag{Name: "go"})
			},
			want: apperror.ErrConflict,
		},
		{
			name: "unknown foreign key is an integrity error",
			fn: func(uow repository.UnitOfWork) error {
				return uow.Todos().Add(ctx, &model.Todo{Title: "orphan", UserID: "nobody"})
			},
			want: apperror.ErrIntegrity,
		},
		{
			name: "check constraint is an integrity error",
			fn: func(uow repository.UnitOfWork) error {
				return uow.Products().Add(ctx, &model.Product{Title: "Bad", Price: -1})
			},
			want: apperror.ErrIntegrity,
		},
		{
			name: "missing row is not found",
			fn: func(uow repository.UnitOfWork) error {
				_, err := uow.Users().GetByID(ctx, "missing")
				return err
			},
			want: apperror.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repository.Within(ctx, s, tt.fn)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	// The failed units of work left the valid rows alone.
	within(t, s, func(uow repository.UnitOfWork) error {
		got, err := uow.Users().GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.True(t, got.CreatedAt.Equal(u.CreatedAt))
		return nil
	})
}

func TestPostgres_TodosWithTagsAndCascade(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()
	u := createUser(t, s, "alice")
	goTag := createTag(t, s, "go")
	sqlTag := createTag(t, s, "sql")

	todo := &model.Todo{Title: "port to postgres", UserID: u.ID}
	within(t, s, func(uow repository.UnitOfWork) error {
		require.NoError(t, uow.Todos().Add(ctx, todo))
		return uow.Todos().SetTags(ctx, todo.ID, []string{sqlTag.ID, goTag.ID, sqlTag.ID})
	})

	within(t, s, func(uow repository.UnitOfWork) error {
		tags, err := uow.Todos().TagsFor(ctx, todo.ID)
		require.NoError(t, err)
		require.Len(t, tags[todo.ID], 2)
		assert.Equal(t, "go", tags[todo.ID][0].Name)

		completed := false
		todos, err := uow.Todos().Find(ctx, repository.TodoFilter{UserID: u.ID, Completed: &completed}, repository.ListOptions{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, todos, 1)
		return nil
	})

	within(t, s, func(uow repository.UnitOfWork) error {
		deleted, err := uow.Users().Delete(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, deleted)
		return nil
	})

	within(t, s, func(uow repository.UnitOfWork) error {
		_, err := uow.Todos().GetByID(ctx, todo.ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		return nil
	})
}

func TestPostgres_PanicRollsBack(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = repository.Within(ctx, s, func(uow repository.UnitOfWork) error {
			require.NoError(t, uow.Tags().Add(ctx, &model.Tag{Name: "ghost"}))
			panic("boom")
		})
	})

	within(t, s, func(uow repository.UnitOfWork) error {
		_, err := uow.Tags().GetByName(ctx, "ghost")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		return nil
	})
}

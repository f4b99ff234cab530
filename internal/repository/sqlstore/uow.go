package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/database"
	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
)

var _ repository.UnitOfWork = (*unitOfWork)(nil)

// unitOfWork owns one sql.Tx. After Commit or Rollback it is closed: the
// repositories it handed out return repository.ErrClosed from then on.
// A unit belongs to one request and is not safe for concurrent use.
type unitOfWork struct {
	tx      *sql.Tx
	dialect database.Dialect
	closed  bool

	users    *userRepo
	profiles *profileRepo
	todos    *todoRepo
	tags     *tagRepo
	products *productRepo
}

func newUnitOfWork(tx *sql.Tx, dialect database.Dialect) *unitOfWork {
	u := &unitOfWork{tx: tx, dialect: dialect}
	u.users = &userRepo{table[model.User]{u: u, s: &userSchema}}
	u.profiles = &profileRepo{table[model.Profile]{u: u, s: &profileSchema}}
	u.todos = &todoRepo{table[model.Todo]{u: u, s: &todoSchema}}
	u.tags = &tagRepo{table[model.Tag]{u: u, s: &tagSchema}}
	u.products = &productRepo{table[model.Product]{u: u, s: &productSchema}}
	return u
}

func (u *unitOfWork) Users() repository.UserRepository       { return u.users }
func (u *unitOfWork) Profiles() repository.ProfileRepository { return u.profiles }
func (u *unitOfWork) Todos() repository.TodoRepository       { return u.todos }
func (u *unitOfWork) Tags() repository.TagRepository         { return u.tags }
func (u *unitOfWork) Products() repository.ProductRepository { return u.products }

// Commit commits the transaction and closes the unit. The unit is closed
// even when the commit fails.
func (u *unitOfWork) Commit() error {
	if u.closed {
		return repository.ErrClosed
	}
	u.closed = true
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: committing: %w", u.translate("db", err))
	}
	return nil
}

// Rollback aborts the transaction. It is a no-op on a closed unit.
func (u *unitOfWork) Rollback() error {
	if u.closed {
		return nil
	}
	u.closed = true
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("sqlstore: rolling back: %w", err)
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

type closedRow struct{}

func (closedRow) Scan(...any) error { return repository.ErrClosed }

func (u *unitOfWork) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if u.closed {
		return nil, repository.ErrClosed
	}
	return u.tx.ExecContext(ctx, u.dialect.Rebind(query), args...)
}

func (u *unitOfWork) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if u.closed {
		return nil, repository.ErrClosed
	}
	return u.tx.QueryContext(ctx, u.dialect.Rebind(query), args...)
}

func (u *unitOfWork) queryRow(ctx context.Context, query string, args ...any) scanner {
	if u.closed {
		return closedRow{}
	}
	return u.tx.QueryRowContext(ctx, u.dialect.Rebind(query), args...)
}

// translate turns constraint and connection failures into domain errors
// attributed to resource. Other errors are returned unchanged.
func (u *unitOfWork) translate(resource string, err error) error {
	if errors.Is(err, repository.ErrClosed) {
		return err
	}
	switch u.dialect.Classify(err) {
	case database.KindUnique:
		return apperror.AlreadyExists(resource, "")
	case database.KindForeignKey, database.KindNotNull, database.KindCheck:
		return apperror.Integrity(resource)
	case database.KindConnection:
		return apperror.Unavailable("db")
	}
	return err
}

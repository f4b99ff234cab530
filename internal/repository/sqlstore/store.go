// Package sqlstore implements the repository interfaces on top of
// database/sql. The same code runs against sqlite and postgres; the
// differences are absorbed by database.Dialect.
//
// TRANSACTIONS EVERYWHERE:
// There is no "plain" repository outside a transaction. Every read and
// write goes through a UnitOfWork started with Store.Begin, which wraps a
// sql.Tx. Short read-only transactions cost next to nothing and keep a
// request's reads consistent with each other.
package sqlstore

import (
	"context"
	"fmt"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/database"
	"github.com/sakif/todo-api/internal/repository"
)

// compile-time check that *Store implements repository.Transactor
var _ repository.Transactor = (*Store)(nil)

// Store hands out units of work over one connection pool.
type Store struct {
	db *database.DB
}

func New(db *database.DB) *Store {
	return &Store{db: db}
}

// Begin starts a transaction and returns the unit of work bound to it.
func (s *Store) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		if s.db.Dialect().Classify(err) == database.KindConnection {
			return nil, fmt.Errorf("sqlstore: beginning transaction: %w", apperror.Unavailable("db"))
		}
		return nil, fmt.Errorf("sqlstore: beginning transaction: %w", err)
	}
	return newUnitOfWork(tx, s.db.Dialect()), nil
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("sqlstore: ping: %w", apperror.Unavailable("db"))
	}
	return nil
}

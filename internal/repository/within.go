package repository

import (
	"context"
	"errors"
	"fmt"
)

// Within runs fn inside a new unit of work.
//
// The unit is committed when fn returns nil and rolled back when fn returns
// an error or panics; a panic is re-raised after the rollback. In every
// case the unit is closed when Within returns.
func Within(ctx context.Context, tx Transactor, fn func(uow UnitOfWork) error) (err error) {
	uow, err := tx.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = uow.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := uow.Rollback(); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
			}
		}
	}()

	if err = fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}

// Query is Within for functions that produce a value.
func Query[T any](ctx context.Context, tx Transactor, fn func(uow UnitOfWork) (T, error)) (T, error) {
	var out T
	err := Within(ctx, tx, func(uow UnitOfWork) error {
		var err error
		out, err = fn(uow)
		return err
	})
	return out, err
}

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeUnit records what happened to it. Repository accessors are never
// called by these tests, so they return nil.
type fakeUnit struct {
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeUnit) Users() UserRepository       { return nil }
func (f *fakeUnit) Profiles() ProfileRepository { return nil }
func (f *fakeUnit) Todos() TodoRepository       { return nil }
func (f *fakeUnit) Tags() TagRepository         { return nil }
func (f *fakeUnit) Products() ProductRepository { return nil }

func (f *fakeUnit) Commit() error {
	f.committed = true
	return f.commitErr
}

func (f *fakeUnit) Rollback() error {
	if f.committed {
		return nil
	}
	f.rolledBack = true
	return nil
}

type fakeTransactor struct {
	unit     *fakeUnit
	beginErr error
}

func (f *fakeTransactor) Begin(ctx context.Context) (UnitOfWork, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f.unit, nil
}

func TestWithin_CommitsOnSuccess(t *testing.T) {
	tx := &fakeTransactor{unit: &fakeUnit{}}

	err := Within(context.Background(), tx, func(uow UnitOfWork) error { return nil })

	assert.NoError(t, err)
	assert.True(t, tx.unit.committed)
	assert.False(t, tx.unit.rolledBack)
}

func TestWithin_RollsBackOnError(t *testing.T) {
	tx := &fakeTransactor{unit: &fakeUnit{}}
	sentinel := errors.New("boom")

	err := Within(context.Background(), tx, func(uow UnitOfWork) error { return sentinel })

	assert.ErrorIs(t, err, sentinel)
	assert.False(t, tx.unit.committed)
	assert.True(t, tx.unit.rolledBack)
}

func TestWithin_RollsBackAndRepanics(t *testing.T) {
	tx := &fakeTransactor{unit: &fakeUnit{}}

	assert.PanicsWithValue(t, "boom", func() {
		_ = Within(context.Background(), tx, func(uow UnitOfWork) error { panic("boom") })
	})
	assert.True(t, tx.unit.rolledBack)
}

func TestWithin_CommitError(t *testing.T) {
	commitErr := errors.New("disk full")
	tx := &fakeTransactor{unit: &fakeUnit{commitErr: commitErr}}

	err := Within(context.Background(), tx, func(uow UnitOfWork) error { return nil })

	assert.ErrorIs(t, err, commitErr)
}

func TestWithin_BeginError(t *testing.T) {
	beginErr := errors.New("no connection")
	tx := &fakeTransactor{beginErr: beginErr}
	called := false

	err := Within(context.Background(), tx, func(uow UnitOfWork) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, beginErr)
	assert.False(t, called)
}

func TestQuery_ReturnsValue(t *testing.T) {
	tx := &fakeTransactor{unit: &fakeUnit{}}

	got, err := Query(context.Background(), tx, func(uow UnitOfWork) (int, error) { return 42, nil })

	assert.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.True(t, tx.unit.committed)
}

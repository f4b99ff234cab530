// Package repository declares the persistence contracts used by the service
// layer: a generic Repository[T], one interface per entity, and the
// UnitOfWork that groups them under a single transaction.
//
// Implementations live in sub-packages (see repository/sqlstore). Services
// only ever see these interfaces.
package repository

import (
	"context"
	"errors"

	"github.com/sakif/todo-api/internal/model"
)

// ErrClosed is returned by repositories of a unit of work that was already
// committed or rolled back.
var ErrClosed = errors.New("repository: unit of work is closed")

type ListOptions struct {
	Limit  int
	Offset int
}

// Fields holds column → value pairs for a partial update. Only the columns
// an implementation whitelists for the entity are accepted.
type Fields map[string]any

// Repository is the generic CRUD contract for one entity type.
//
// GetByID and Update return an *apperror.AppError wrapping ErrNotFound when
// no row has the id. Delete reports whether a row was removed instead.
type Repository[T any] interface {
	Add(ctx context.Context, entity *T) error
	GetAll(ctx context.Context, opts ListOptions) ([]T, error)
	GetByID(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, id string, fields Fields) error
	Delete(ctx context.Context, id string) (bool, error)
}

type UserRepository interface {
	Repository[model.User]
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

type ProfileRepository interface {
	Repository[model.Profile]
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
}

// TodoFilter narrows a todo listing. Zero values mean "any".
type TodoFilter struct {
	UserID    string
	Completed *bool
}

type TodoRepository interface {
	Repository[model.Todo]
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]model.Todo, error)
	Find(ctx context.Context, filter TodoFilter, opts ListOptions) ([]model.Todo, error)
	// SetTags replaces the tags attached to a todo.
	SetTags(ctx context.Context, todoID string, tagIDs []string) error
	// TagsFor returns the tags of each given todo, keyed by todo id.
	TagsFor(ctx context.Context, todoIDs ...string) (map[string][]model.Tag, error)
}

type TagRepository interface {
	Repository[model.Tag]
	GetByName(ctx context.Context, name string) (*model.Tag, error)
	GetByIDs(ctx context.Context, ids []string) ([]model.Tag, error)
}

// ProductFilter narrows a product listing. Zero values mean "any".
type ProductFilter struct {
	Status   model.ProductStatus
	Featured *bool
}

type ProductRepository interface {
	Repository[model.Product]
	Find(ctx context.Context, filter ProductFilter, opts ListOptions) ([]model.Product, error)
}

// UnitOfWork is a transactional scope. Every repository it hands out runs
// inside the same transaction.
//
// Rollback after Commit is a no-op, so the usual pattern is:
//
//	uow, err := tx.Begin(ctx)
//	if err != nil { ... }
//	defer uow.Rollback()
//	... use uow.Todos(), uow.Tags() ...
//	return uow.Commit()
type UnitOfWork interface {
	Users() UserRepository
	Profiles() ProfileRepository
	Todos() TodoRepository
	Tags() TagRepository
	Products() ProductRepository

	Commit() error
	Rollback() error
}

// Transactor starts units of work.
type Transactor interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

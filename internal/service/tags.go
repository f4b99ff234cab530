package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
)

// TagService manages tags. Tag names are unique.
type TagService struct {
	tx     repository.Transactor
	logger *slog.Logger
}

func NewTagService(tx repository.Transactor, logger *slog.Logger) *TagService {
	return &TagService{tx: tx, logger: logger}
}

func (s *TagService) Create(ctx context.Context, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)

	tag, err := repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (*model.Tag, error) {
		if _, found, err := exists(ctx, uow.Tags().GetByName, name); err != nil {
			return nil, err
		} else if found {
			return nil, apperror.AlreadyExists("tag", "name")
		}

		t := &model.Tag{Name: name}
		if err := uow.Tags().Add(ctx, t); err != nil {
			return nil, err
		}
		return t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("service/tags: creating %q: %w", name, err)
	}

	s.logger.Info("tag created", slog.String("id", tag.ID), slog.String("name", tag.Name))
	return tag, nil
}

func (s *TagService) List(ctx context.Context, opts repository.ListOptions) ([]model.Tag, error) {
	return repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) ([]model.Tag, error) {
		return uow.Tags().GetAll(ctx, opts)
	})
}

func (s *TagService) Get(ctx context.Context, id string) (*model.Tag, error) {
	return repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (*model.Tag, error) {
		return uow.Tags().GetByID(ctx, id)
	})
}

// Update renames a tag. A nil name returns the tag unchanged.
func (s *TagService) Update(ctx context.Context, id string, name *string) (*model.Tag, error) {
	tag, err := repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (*model.Tag, error) {
		if name == nil {
			return uow.Tags().GetByID(ctx, id)
		}

		newName := strings.TrimSpace(*name)
		other, found, err := exists(ctx, uow.Tags().GetByName, newName)
		if err != nil {
			return nil, err
		}
		if found && other.ID != id {
			return nil, apperror.AlreadyExists("tag", "name")
		}

		if err := uow.Tags().Update(ctx, id, repository.Fields{"name": newName}); err != nil {
			return nil, err
		}
		return uow.Tags().GetByID(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("service/tags: updating %s: %w", id, err)
	}
	return tag, nil
}

// Delete removes a tag and detaches it from every todo.
func (s *TagService) Delete(ctx context.Context, id string) error {
	err := repository.Within(ctx, s.tx, func(uow repository.UnitOfWork) error {
		deleted, err := uow.Tags().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return apperror.NotFound("tag", id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("service/tags: deleting %s: %w", id, err)
	}

	s.logger.Info("tag deleted", slog.String("id", id))
	return nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/auth"
	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
)

// CreateTodoInput describes a new todo. An empty UserID means the caller.
type CreateTodoInput struct {
	Title       string
	Description *string
	Completed   bool
	UserID      string
	TagIDs      []string
}

// UpdateTodoInput is a partial update: nil fields are left untouched.
// A non-nil TagIDs replaces the todo's tags (an empty slice clears them).
type UpdateTodoInput struct {
	Title       *string
	Description *string
	Completed   *bool
	UserID      *string
	TagIDs      *[]string
}

func (in UpdateTodoInput) empty() bool {
	return in.Title == nil && in.Description == nil && in.Completed == nil && in.UserID == nil && in.TagIDs == nil
}

// TodoService manages todos and their tags.
//
// Every todo it returns is fully loaded: its owner in User and its tags
// in Tags (never nil, so it encodes as []).
type TodoService struct {
	tx     repository.Transactor
	logger *slog.Logger
}

func NewTodoService(tx repository.Transactor, logger *slog.Logger) *TodoService {
	return &TodoService{tx: tx, logger: logger}
}

// Create adds a todo for the caller, or for UserID when the caller is an
// admin. Unknown tag ids are an integrity error and nothing is written.
func (s *TodoService) Create(ctx context.Context, actor *auth.Principal, in CreateTodoInput) (*model.Todo, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	userID := in.UserID
	if userID == "" {
		userID = actor.UserID
	}
	if err := requireOwner(actor, userID); err != nil {
		return nil, err
	}

	todo, err := repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (*model.Todo, error) {
		t := &model.Todo{
			Title:       in.Title,
			Description: in.Description,
			Completed:   in.Completed,
			UserID:      userID,
		}
		if err := uow.Todos().Add(ctx, t); err != nil {
			return nil, err
		}
		if err := setTags(ctx, uow, t.ID, in.TagIDs); err != nil {
			return nil, err
		}
		return load(ctx, uow, t.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("service/todos: creating: %w", err)
	}

	s.logger.Info("todo created",
		slog.String("id", todo.ID),
		slog.String("user_id", todo.UserID),
		slog.Int("tags", len(todo.Tags)),
	)
	return todo, nil
}

// List returns todos matching filter, each with its owner and tags.
func (s *TodoService) List(ctx context.Context, filter repository.TodoFilter, opts repository.ListOptions) ([]model.Todo, error) {
	return repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) ([]model.Todo, error) {
		todos, err := uow.Todos().Find(ctx, filter, opts)
		if err != nil {
			return nil, err
		}
		if err := attachTags(ctx, uow, todos); err != nil {
			return nil, err
		}
		return todos, attachUsers(ctx, uow, todos)
	})
}

func (s *TodoService) Get(ctx context.Context, id string) (*model.Todo, error) {
	return repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (*model.Todo, error) {
		return load(ctx, uow, id)
	})
}

// Update applies a partial update on behalf of the owner or an admin.
// Moving a todo to another user is reserved to admins.
func (s *TodoService) Update(ctx context.Context, actor *auth.Principal, id string, in UpdateTodoInput) (*model.Todo, error) {
	if in.UserID != nil && !actor.IsAdmin() {
		return nil, apperror.Forbidden("Only admins can reassign todos")
	}

	todo, err := repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (*model.Todo, error) {
		current, err := uow.Todos().GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := requireOwner(actor, current.UserID); err != nil {
			return nil, err
		}
		if in.empty() {
			return load(ctx, uow, id)
		}

		fields := repository.Fields{}
		if in.Title != nil {
			fields["title"] = *in.Title
		}
		if in.Description != nil {
			fields["description"] = *in.Description
		}
		if in.Completed != nil {
			fields["completed"] = *in.Completed
		}
		if in.UserID != nil {
			fields["user_id"] = *in.UserID
		}
		if len(fields) > 0 {
			if err := uow.Todos().Update(ctx, id, fields); err != nil {
				return nil, err
			}
		}
		if in.TagIDs != nil {
			if err := setTags(ctx, uow, id, *in.TagIDs); err != nil {
				return nil, err
			}
		}
		return load(ctx, uow, id)
	})
	if err != nil {
		return nil, fmt.Errorf("service/todos: updating %s: %w", id, err)
	}
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, actor *auth.Principal, id string) error {
	err := repository.Within(ctx, s.tx, func(uow repository.UnitOfWork) error {
		t, err := uow.Todos().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := requireOwner(actor, t.UserID); err != nil {
			return err
		}
		_, err = uow.Todos().Delete(ctx, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("service/todos: deleting %s: %w", id, err)
	}

	s.logger.Info("todo deleted", slog.String("id", id))
	return nil
}

// setTags replaces the tags of todoID after checking every id exists.
func setTags(ctx context.Context, uow repository.UnitOfWork, todoID string, tagIDs []string) error {
	ids := slices.Clone(tagIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	if len(ids) > 0 {
		found, err := uow.Tags().GetByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(found) != len(ids) {
			return apperror.Integrity("todo")
		}
	}
	return uow.Todos().SetTags(ctx, todoID, ids)
}

// load returns one todo with its owner and tags.
func load(ctx context.Context, uow repository.UnitOfWork, id string) (*model.Todo, error) {
	t, err := uow.Todos().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	todos := []model.Todo{*t}
	if err := attachTags(ctx, uow, todos); err != nil {
		return nil, err
	}
	if err := attachUsers(ctx, uow, todos); err != nil {
		return nil, err
	}
	return &todos[0], nil
}

// attachTags fills Tags of every todo in place.
func attachTags(ctx context.Context, uow repository.UnitOfWork, todos []model.Todo) error {
	if len(todos) == 0 {
		return nil
	}
	ids := make([]string, len(todos))
	for i := range todos {
		ids[i] = todos[i].ID
	}
	tags, err := uow.Todos().TagsFor(ctx, ids...)
	if err != nil {
		return err
	}
	for i := range todos {
		todos[i].Tags = tags[todos[i].ID]
		if todos[i].Tags == nil {
			todos[i].Tags = []model.Tag{}
		}
	}
	return nil
}

// attachUsers fills User of every todo in place, loading each owner once.
func attachUsers(ctx context.Context, uow repository.UnitOfWork, todos []model.Todo) error {
	users := make(map[string]*model.User)
	for i := range todos {
		uid := todos[i].UserID
		u, ok := users[uid]
		if !ok {
			var err error
			if u, err = uow.Users().GetByID(ctx, uid); err != nil {
				return err
			}
			users[uid] = u
		}
		todos[i].User = u
	}
	return nil
}

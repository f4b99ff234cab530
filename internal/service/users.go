package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/auth"
	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
)

// CreateUserInput carries the fields of a new account. Role is optional
// and defaults to USER.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     model.Role
}

// UpdateUserInput is a partial update: nil fields are left untouched.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	Role     *model.Role
}

func (in UpdateUserInput) empty() bool {
	return in.Username == nil && in.Email == nil && in.Password == nil && in.Role == nil
}

// UserService manages user accounts.
type UserService struct {
	tx        repository.Transactor
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewUserService(tx repository.Transactor, passwords *auth.PasswordService, logger *slog.Logger) *UserService {
	return &UserService{tx: tx, passwords: passwords, logger: logger}
}

// Create adds a user. Usernames and emails are unique; a clash is reported
// as a conflict naming the offending field.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	user, err := repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (*model.User, error) {
		return s.create(ctx, uow, in)
	})
	if err != nil {
		return nil, fmt.Errorf("service/users: creating %q: %w", in.Username, err)
	}

	s.logger.Info("user created",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// create runs inside the caller's unit of work so registration and admin
// seeding share it.
func (s *UserService) create(ctx context.Context, uow repository.UnitOfWork, in CreateUserInput) (*model.User, error) {
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, apperror.ValidationFailed("role", "role must be ADMIN or USER")
	}

	username, err := normalizeUsername(in.Username)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.checkUnique(ctx, uow, "", username, email); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{Username: username, Email: email, PasswordHash: hash, Role: role}
	if err := uow.Users().Add(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Username length bounds, counted in characters after trimming.
const (
	minUsernameLen = 3
	maxUsernameLen = 50
)

// normalizeUsername trims raw and checks what is left. Request validation
// sees the untrimmed value, so "   " would otherwise be stored as "".
// "@" is reserved: Login treats an identifier containing it as an email.
func normalizeUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(username)
	switch {
	case n < minUsernameLen || n > maxUsernameLen:
		return "", apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d to %d characters long", minUsernameLen, maxUsernameLen))
	case strings.Contains(username, "@"):
		return "", apperror.ValidationFailed("username", "username must not contain @")
	}
	return username, nil
}

// checkUnique rejects a username or email already used by another user
// than selfID. Empty values are not checked.
func (s *UserService) checkUnique(ctx context.Context, uow repository.UnitOfWork, selfID, username, email string) error {
	if username != "" {
		other, found, err := exists(ctx, uow.Users().GetByUsername, username)
		if err != nil {
			return err
		}
		if found && other.ID != selfID {
			return apperror.AlreadyExists("user", "username")
		}
	}
	if email != "" {
		other, found, err := exists(ctx, uow.Users().GetByEmail, email)
		if err != nil {
			return err
		}
		if found && other.ID != selfID {
			return apperror.AlreadyExists("user", "email")
		}
	}
	return nil
}

func (s *UserService) List(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	return repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) ([]model.User, error) {
		return uow.Users().GetAll(ctx, opts)
	})
}

// Get returns the user with its todos (and their tags) and its profile.
func (s *UserService) Get(ctx context.Context, id string) (*model.UserDetail, error) {
	return repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (*model.UserDetail, error) {
		return loadDetail(ctx, uow, id)
	})
}

// loadDetail reads a user with its relations. Todos is never nil.
func loadDetail(ctx context.Context, uow repository.UnitOfWork, id string) (*model.UserDetail, error) {
	user, err := uow.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	todos, err := uow.Todos().ListByUser(ctx, id, repository.ListOptions{})
	if err != nil {
		return nil, err
	}
	if err := attachTags(ctx, uow, todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []model.Todo{}
	}

	profile, _, err := exists(ctx, uow.Profiles().GetByUserID, id)
	if err != nil {
		return nil, err
	}
	return &model.UserDetail{User: *user, Todos: todos, Profile: profile}, nil
}

// Todos lists the todos of one user. The user must exist.
func (s *UserService) Todos(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Todo, error) {
	return repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) ([]model.Todo, error) {
		if _, err := uow.Users().GetByID(ctx, userID); err != nil {
			return nil, err
		}
		todos, err := uow.Todos().ListByUser(ctx, userID, opts)
		if err != nil {
			return nil, err
		}
		return todos, attachTags(ctx, uow, todos)
	})
}

// Profile returns the profile of one user. A missing user and a user
// without a profile are both reported as not found.
func (s *UserService) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	return repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (*model.Profile, error) {
		if _, err := uow.Users().GetByID(ctx, userID); err != nil {
			return nil, err
		}
		p, found, err := exists(ctx, uow.Profiles().GetByUserID, userID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, apperror.NotFound("userprofile", userID)
		}
		return p, nil
	})
}

// Update applies a partial update. Users may update themselves; only
// admins may update others or change a role.
//
// The result has the same shape as Get: todos and profile included.
func (s *UserService) Update(ctx context.Context, actor *auth.Principal, id string, in UpdateUserInput) (*model.UserDetail, error) {
	if err := requireOwner(actor, id); err != nil {
		return nil, err
	}
	if in.Role != nil && !actor.IsAdmin() {
		return nil, apperror.Forbidden("Only admins can change roles")
	}

	user, err := repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (*model.UserDetail, error) {
		if in.empty() {
			return loadDetail(ctx, uow, id)
		}

		fields := repository.Fields{}
		var username, email string
		if in.Username != nil {
			var err error
			if username, err = normalizeUsername(*in.Username); err != nil {
				return nil, err
			}
			fields["username"] = username
		}
		if in.Email != nil {
			email = strings.ToLower(strings.TrimSpace(*in.Email))
			fields["email"] = email
		}
		if in.Role != nil {
			if !in.Role.Valid() {
				return nil, apperror.ValidationFailed("role", "role must be ADMIN or USER")
			}
			fields["role"] = string(*in.Role)
		}
		if in.Password != nil {
			hash, err := s.passwords.Hash(*in.Password)
			if err != nil {
				return nil, apperror.ValidationFailed("password", err.Error())
			}
			fields["password_hash"] = hash
		}

		if err := s.checkUnique(ctx, uow, id, username, email); err != nil {
			return nil, err
		}
		if err := uow.Users().Update(ctx, id, fields); err != nil {
			return nil, err
		}
		return loadDetail(ctx, uow, id)
	})
	if err != nil {
		return nil, fmt.Errorf("service/users: updating %s: %w", id, err)
	}

	s.logger.Info("user updated", slog.String("id", id), slog.String("by", actor.UserID))
	return user, nil
}

// Delete removes a user together with its profile and todos.
func (s *UserService) Delete(ctx context.Context, id string) error {
	err := repository.Within(ctx, s.tx, func(uow repository.UnitOfWork) error {
		deleted, err := uow.Users().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return apperror.NotFound("user", id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("service/users: deleting %s: %w", id, err)
	}

	s.logger.Info("user deleted", slog.String("id", id))
	return nil
}

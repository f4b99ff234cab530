package sqlstore

import (
	"context"
	"time"

	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
)

// compile-time check that *userRepo implements repository.UserRepository
var _ repository.UserRepository = (*userRepo)(nil)

var userSchema = schema[model.User]{
	resource: "user",
	table:    "users",
	columns:  []string{"id", "username", "email", "password_hash", "role", "created_at", "updated_at"},
	updatable: map[string]bool{
		"username": true, "email": true, "password_hash": true, "role": true,
	},
	values: func(u *model.User) []any {
		return []any{u.ID, u.Username, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt}
	},
	scan: func(s scanner, u *model.User) error {
		return s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	},
	stamp: func(u *model.User, id string, now time.Time) {
		u.ID, u.CreatedAt, u.UpdatedAt = id, now, now
		if u.Role == "" {
			u.Role = model.RoleUser
		}
	},
}

type userRepo struct {
	table[model.User]
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email", email, email)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "username", username, username)
}

package sqlstore

import (
	"context"
	"time"

	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
)

var _ repository.ProfileRepository = (*profileRepo)(nil)

var profileSchema = schema[model.Profile]{
	resource:  "userprofile",
	table:     "user_profiles",
	columns:   []string{"id", "user_id", "bio", "avatar_url", "created_at", "updated_at"},
	updatable: map[string]bool{"bio": true, "avatar_url": true},
	values: func(p *model.Profile) []any {
		return []any{p.ID, p.UserID, p.Bio, p.AvatarURL, p.CreatedAt, p.UpdatedAt}
	},
	scan: func(s scanner, p *model.Profile) error {
		return s.Scan(&p.ID, &p.UserID, &p.Bio, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	},
	stamp: func(p *model.Profile, id string, now time.Time) {
		p.ID, p.CreatedAt, p.UpdatedAt = id, now, now
	},
}

type profileRepo struct {
	table[model.Profile]
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	return r.findOne(ctx, "user_id", userID, userID)
}

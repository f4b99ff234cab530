package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
)

var _ repository.TagRepository = (*tagRepo)(nil)

var tagSchema = schema[model.Tag]{
	resource:  "tag",
	table:     "tags",
	columns:   []string{"id", "name", "created_at", "updated_at"},
	updatable: map[string]bool{"name": true},
	values: func(t *model.Tag) []any {
		return []any{t.ID, t.Name, t.CreatedAt, t.UpdatedAt}
	},
	scan: func(s scanner, t *model.Tag) error {
		return s.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	},
	stamp: func(t *model.Tag, id string, now time.Time) {
		t.ID, t.CreatedAt, t.UpdatedAt = id, now, now
	},
}

type tagRepo struct {
	table[model.Tag]
}

func (r *tagRepo) GetByName(ctx context.Context, name string) (*model.Tag, error) {
	return r.findOne(ctx, "name", name, name)
}

// GetByIDs returns the tags that exist among ids, ordered by name.
// Unknown ids are skipped; callers compare lengths to detect them.
func (r *tagRepo) GetByIDs(ctx context.Context, ids []string) ([]model.Tag, error) {
	if len(ids) == 0 {
		return []model.Tag{}, nil
	}
	in, args := inList(ids)
	q := fmt.Sprintf(`SELECT %s FROM tags WHERE id IN (%s) ORDER BY name`, r.s.selectList(""), in)
	return r.collect(ctx, q, args...)
}

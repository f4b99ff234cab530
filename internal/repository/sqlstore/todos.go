package sqlstore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
)

var _ repository.TodoRepository = (*todoRepo)(nil)

var todoSchema = schema[model.Todo]{
	resource:  "todo",
	table:     "todos",
	columns:   []string{"id", "title", "description", "completed", "user_id", "created_at", "updated_at"},
	updatable: map[string]bool{"title": true, "description": true, "completed": true, "user_id": true},
	values: func(t *model.Todo) []any {
		return []any{t.ID, t.Title, t.Description, t.Completed, t.UserID, t.CreatedAt, t.UpdatedAt}
	},
	scan: func(s scanner, t *model.Todo) error {
		return s.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	},
	stamp: func(t *model.Todo, id string, now time.Time) {
		t.ID, t.CreatedAt, t.UpdatedAt = id, now, now
	},
}

type todoRepo struct {
	table[model.Todo]
}

func (r *todoRepo) ListByUser(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Todo, error) {
	return r.list(ctx, "user_id = ?", []any{userID}, opts)
}

func (r *todoRepo) Find(ctx context.Context, f repository.TodoFilter, opts repository.ListOptions) ([]model.Todo, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Completed != nil {
		where = append(where, "completed = ?")
		args = append(args, *f.Completed)
	}
	return r.list(ctx, strings.Join(where, " AND "), args, opts)
}

// SetTags replaces the association rows of todoID with tagIDs.
// Duplicate ids are collapsed. An unknown tag id violates the foreign key
// and surfaces as a todo integrity error.
func (r *todoRepo) SetTags(ctx context.Context, todoID string, tagIDs []string) error {
	if _, err := r.u.exec(ctx, `DELETE FROM todo_tags WHERE todo_id = ?`, todoID); err != nil {
		return r.fail("clearing tags of", err)
	}

	ids := slices.Clone(tagIDs)
	slices.Sort(ids)
	for _, tagID := range slices.Compact(ids) {
		_, err := r.u.exec(ctx, `INSERT INTO todo_tags (todo_id, tag_id) VALUES (?, ?)`, todoID, tagID)
		if err != nil {
			return r.fail("tagging", err)
		}
	}
	return nil
}

func (r *todoRepo) TagsFor(ctx context.Context, todoIDs ...string) (map[string][]model.Tag, error) {
	out := make(map[string][]model.Tag, len(todoIDs))
	if len(todoIDs) == 0 {
		return out, nil
	}

	in, args := inList(todoIDs)
	q := fmt.Sprintf(`SELECT tt.todo_id, %s FROM todo_tags tt
		JOIN tags t ON t.id = tt.tag_id
		WHERE tt.todo_id IN (%s)
		ORDER BY t.name`, tagSchema.selectList("t"), in)

	rows, err := r.u.query(ctx, q, args...)
	if err != nil {
		return nil, r.fail("loading tags of", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			todoID string
			t      model.Tag
		)
		if err := rows.Scan(&todoID, &t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, r.fail("scanning tags of", err)
		}
		out[todoID] = append(out[todoID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("loading tags of", err)
	}
	return out, nil
}

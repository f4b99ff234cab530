package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/repository"
)

// schema describes how one entity maps onto its table.
//
// columns lists every column in SELECT/INSERT order, "id" first. values and
// scan must follow the same order. updatable is the whitelist for
// Repository.Update; updated_at is stamped automatically and never listed.
type schema[T any] struct {
	resource  string
	table     string
	columns   []string
	updatable map[string]bool

	values func(e *T) []any
	scan   func(s scanner, e *T) error
	// stamp assigns a new id and creation timestamps before insert.
	stamp func(e *T, id string, now time.Time)
}

func (s *schema[T]) selectList(alias string) string {
	if alias == "" {
		return strings.Join(s.columns, ", ")
	}
	cols := make([]string, len(s.columns))
	for i, c := range s.columns {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// table is the generic Repository[T] implementation. Entity repositories
// embed it and add their own finders.
type table[T any] struct {
	u *unitOfWork
	s *schema[T]
}

// now is truncated to microseconds, the precision postgres keeps, so a
// value read back compares equal to the one written.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (t table[T]) fail(op string, err error) error {
	return fmt.Errorf("sqlstore: %s %s: %w", op, t.s.resource, t.u.translate(t.s.resource, err))
}

func (t table[T]) Add(ctx context.Context, e *T) error {
	t.s.stamp(e, xid.New().String(), now())

	q := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		t.s.table, t.s.selectList(""), placeholders(len(t.s.columns)))
	if _, err := t.u.exec(ctx, q, t.s.values(e)...); err != nil {
		return t.fail("inserting", err)
	}
	return nil
}

func (t table[T]) GetAll(ctx context.Context, opts repository.ListOptions) ([]T, error) {
	return t.list(ctx, "", nil, opts)
}

func (t table[T]) GetByID(ctx context.Context, id string) (*T, error) {
	return t.findOne(ctx, "id", id, id)
}

// Update sets the given columns and updated_at on the row with id.
// Columns are applied in sorted order so the generated SQL is stable.
func (t table[T]) Update(ctx context.Context, id string, fields repository.Fields) error {
	cols := make([]string, 0, len(fields))
	for c := range fields {
		if !t.s.updatable[c] {
			return fmt.Errorf("sqlstore: %s has no updatable column %q", t.s.table, c)
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+2)
	for _, c := range cols {
		sets = append(sets, c+" = ?")
		args = append(args, fields[c])
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, now(), id)

	q := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?`, t.s.table, strings.Join(sets, ", "))
	res, err := t.u.exec(ctx, q, args...)
	if err != nil {
		return t.fail("updating", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return t.fail("updating", err)
	}
	if n == 0 {
		return apperror.NotFound(t.s.resource, id)
	}
	return nil
}

func (t table[T]) Delete(ctx context.Context, id string) (bool, error) {
	res, err := t.u.exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, t.s.table), id)
	if err != nil {
		return false, t.fail("deleting", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, t.fail("deleting", err)
	}
	return n > 0, nil
}

// findOne returns the single row where column = value. notFoundID is what
// the NotFound error reports.
func (t table[T]) findOne(ctx context.Context, column string, value any, notFoundID string) (*T, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`, t.s.selectList(""), t.s.table, column)

	var e T
	if err := t.s.scan(t.u.queryRow(ctx, q, value), &e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound(t.s.resource, notFoundID)
		}
		return nil, t.fail("getting", err)
	}
	return &e, nil
}

// list runs SELECT ... [WHERE where] ORDER BY created_at, id with optional
// pagination. A non-positive Limit returns every row.
func (t table[T]) list(ctx context.Context, where string, args []any, opts repository.ListOptions) ([]T, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s`, t.s.selectList(""), t.s.table)
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY created_at, id"
	if opts.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, max(opts.Offset, 0))
	}
	return t.collect(ctx, q, args...)
}

func (t table[T]) collect(ctx context.Context, q string, args ...any) ([]T, error) {
	rows, err := t.u.query(ctx, q, args...)
	if err != nil {
		return nil, t.fail("listing", err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var e T
		if err := t.s.scan(rows, &e); err != nil {
			return nil, t.fail("scanning", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, t.fail("listing", err)
	}
	return out, nil
}

// placeholders returns "?, ?, ..." with n entries.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// inList returns "?, ?, ..." for ids together with the matching args.
func inList(ids []string) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return placeholders(len(ids)), args
}

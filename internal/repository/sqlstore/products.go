package sqlstore

import (
	"context"
	"strings"
	"time"

	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
)

var _ repository.ProductRepository = (*productRepo)(nil)

var productSchema = schema[model.Product]{
	resource: "product",
	table:    "products",
	columns: []string{
		"id", "title", "price", "count", "description", "status", "is_featured", "created_at", "updated_at",
	},
	updatable: map[string]bool{
		"title": true, "price": true, "count": true, "description": true, "status": true, "is_featured": true,
	},
	values: func(p *model.Product) []any {
		return []any{p.ID, p.Title, p.Price, p.Count, p.Description, string(p.Status), p.IsFeatured, p.CreatedAt, p.UpdatedAt}
	},
	scan: func(s scanner, p *model.Product) error {
		return s.Scan(&p.ID, &p.Title, &p.Price, &p.Count, &p.Description, &p.Status, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt)
	},
	stamp: func(p *model.Product, id string, now time.Time) {
		p.ID, p.CreatedAt, p.UpdatedAt = id, now, now
		if p.Status == "" {
			p.Status = model.ProductDraft
		}
		if p.Description == "" {
			p.Description = model.DefaultProductDescription
		}
	},
}

type productRepo struct {
	table[model.Product]
}

func (r *productRepo) Find(ctx context.Context, f repository.ProductFilter, opts repository.ListOptions) ([]model.Product, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Featured != nil {
		where = append(where, "is_featured = ?")
		args = append(args, *f.Featured)
	}
	return r.list(ctx, strings.Join(where, " AND "), args, opts)
}

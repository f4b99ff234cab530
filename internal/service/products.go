package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
)

// CreateProductInput describes a new product. An empty Description or
// Status takes the default ("Default description", DRAFT).
type CreateProductInput struct {
	Title       string
	Price       int
	Count       int
	Description string
	Status      model.ProductStatus
	IsFeatured  bool
}

// UpdateProductInput is a partial update: nil fields are left untouched.
type UpdateProductInput struct {
	Title       *string
	Price       *int
	Count       *int
	Description *string
	Status      *model.ProductStatus
	IsFeatured  *bool
}

// ProductService manages the product catalogue.
type ProductService struct {
	tx     repository.Transactor
	logger *slog.Logger
}

func NewProductService(tx repository.Transactor, logger *slog.Logger) *ProductService {
	return &ProductService{tx: tx, logger: logger}
}

func validateProduct(price, count *int, status *model.ProductStatus) error {
	if price != nil && *price < 0 {
		return apperror.ValidationFailed("price", "price must not be negative")
	}
	if count != nil && *count < 0 {
		return apperror.ValidationFailed("count", "count must not be negative")
	}
	if status != nil && *status != "" && !status.Valid() {
		return apperror.ValidationFailed("status", "status must be DRAFT, PUBLISHED or ARCHIVED")
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (*model.Product, error) {
	if err := validateProduct(&in.Price, &in.Count, &in.Status); err != nil {
		return nil, err
	}

	product, err := repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (*model.Product, error) {
		p := &model.Product{
			Title:       in.Title,
			Price:       in.Price,
			Count:       in.Count,
			Description: in.Description,
			Status:      in.Status,
			IsFeatured:  in.IsFeatured,
		}
		if err := uow.Products().Add(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("service/products: creating %q: %w", in.Title, err)
	}

	s.logger.Info("product created",
		slog.String("id", product.ID),
		slog.String("status", string(product.Status)),
	)
	return product, nil
}

// List returns products matching filter. An unknown status is a
// validation error rather than an empty page.
func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter, opts repository.ListOptions) ([]model.Product, error) {
	if err := validateProduct(nil, nil, &filter.Status); err != nil {
		return nil, err
	}
	return repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) ([]model.Product, error) {
		return uow.Products().Find(ctx, filter, opts)
	})
}

func (s *ProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	return repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (*model.Product, error) {
		return uow.Products().GetByID(ctx, id)
	})
}

func (s *ProductService) Update(ctx context.Context, id string, in UpdateProductInput) (*model.Product, error) {
	if err := validateProduct(in.Price, in.Count, in.Status); err != nil {
		return nil, err
	}

	fields := repository.Fields{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.Count != nil {
		fields["count"] = *in.Count
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Status != nil && *in.Status != "" {
		fields["status"] = string(*in.Status)
	}
	if in.IsFeatured != nil {
		fields["is_featured"] = *in.IsFeatured
	}

	product, err := repository.Query(ctx, s.tx, func(uow repository.UnitOfWork) (*model.Product, error) {
		if len(fields) > 0 {
			if err := uow.Products().Update(ctx, id, fields); err != nil {
				return nil, err
			}
		}
		return uow.Products().GetByID(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("service/products: updating %s: %w", id, err)
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	err := repository.Within(ctx, s.tx, func(uow repository.UnitOfWork) error {
		deleted, err := uow.Products().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return apperror.NotFound("product", id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("service/products: deleting %s: %w", id, err)
	}

	s.logger.Info("product deleted", slog.String("id", id))
	return nil
}

package model

import "time"

// ProductStatus is the publication state of a product.
type ProductStatus string

const (
	ProductDraft     ProductStatus = "DRAFT"
	ProductPublished ProductStatus = "PUBLISHED"
	ProductArchived  ProductStatus = "ARCHIVED"
)

// DefaultProductDescription is stored when a product is created without one.
const DefaultProductDescription = "Default description"

// Valid reports whether s is one of the known statuses.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductDraft, ProductPublished, ProductArchived:
		return true
	}
	return false
}

type Product struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Price       int           `json:"price"`
	Count       int           `json:"count"`
	Description string        `json:"description"`
	Status      ProductStatus `json:"status"`
	IsFeatured  bool          `json:"is_featured"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

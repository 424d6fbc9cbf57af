// Package repository defines the persistence interfaces for the catalog.
package repository

import (
	"context"

	"github.com/tidegrove/storefront/internal/catalog/domain"
)

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	CategoryID    *string
	SubcategoryID *string
	BrandID       *string
	ProductTypeID *string
	Status        *string
	Search        *string
	OnSale        *bool
	MinPrice      *int64
	MaxPrice      *int64
	Page          int
	PerPage       int
}

// ProductRepository is the persistence interface for products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// List returns products matching the filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
}

// TermRepository is the persistence interface for taxonomy terms. Every
// method takes the taxonomy kind; each kind has its own table.
type TermRepository interface {
	Create(ctx context.Context, term *domain.Term) error
	GetByID(ctx context.Context, kind domain.TermKind, id string) (*domain.Term, error)
	GetByName(ctx context.Context, kind domain.TermKind, name string) (*domain.Term, error)
	GetBySlug(ctx context.Context, kind domain.TermKind, slug string) (*domain.Term, error)
	List(ctx context.Context, kind domain.TermKind) ([]domain.Term, error)
	Delete(ctx context.Context, kind domain.TermKind, id string) error
}

// ReviewRepository is the persistence interface for product reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	ListByProduct(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, error)
	Summary(ctx context.Context, productID string) (*domain.RatingSummary, error)
	Delete(ctx context.Context, id, userID string) error
}

// Package service implements the catalog business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidegrove/storefront/internal/catalog/domain"
	"github.com/tidegrove/storefront/internal/catalog/repository"
	apperrors "github.com/tidegrove/storefront/pkg/errors"
	"github.com/tidegrove/storefront/pkg/slug"
)

// EventPublisher publishes catalog domain events. Implementations must not
// block the request path on broker failures.
type EventPublisher interface {
	ProductViewed(ctx context.Context, productID string)
}

// CatalogService implements product and taxonomy operations.
type CatalogService struct {
	products repository.ProductRepository
	terms    repository.TermRepository
	resolver *Resolver
	events   EventPublisher
	logger   *slog.Logger
}

// NewCatalogService creates a CatalogService. events may be nil when no
// broker is configured.
func NewCatalogService(
	products repository.ProductRepository,
	terms repository.TermRepository,
	events EventPublisher,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		products: products,
		terms:    terms,
		resolver: NewResolver(terms),
		events:   events,
		logger:   logger,
	}
}

// CreateProductInput carries admin input for creating a product. The
// taxonomy fields accept an ID, an exact name, or a slug.
type CreateProductInput struct {
	Name        string
	Description string
	Images      []string
	Price       int64
	SalePrice   *int64
	Currency    string
	Category    string
	Subcategory string
	Brand       string
	ProductType string
	Status      string
}

// CreateProduct validates input, resolves taxonomy references, and stores
// the product. The slug is derived from the name.
func (s *CatalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if input.Price <= 0 {
		return nil, apperrors.InvalidInput("price must be positive")
	}
	if input.SalePrice != nil && *input.SalePrice >= input.Price {
		return nil, apperrors.InvalidInput("sale price must be below the base price")
	}

	p := domain.NewProduct(input.Name, slug.Make(input.Name), input.Price)
	p.Description = input.Description
	p.SalePrice = input.SalePrice
	if len(input.Images) > 0 {
		p.Images = input.Images
	}
	if input.Currency != "" {
		p.Currency = input.Currency
	}
	if input.Status != "" {
		p.Status = input.Status
	}

	if err := s.attachTaxonomy(ctx, p, input); err != nil {
		return nil, err
	}

	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info("product created",
		slog.String("product_id", p.ID),
		slog.String("slug", p.Slug))
	return p, nil
}

// attachTaxonomy resolves the flexible taxonomy identifiers on input and
// sets the corresponding IDs on p. Unresolvable references are rejected as
// invalid input rather than surfacing a bare not-found.
func (s *CatalogService) attachTaxonomy(ctx context.Context, p *domain.Product, input CreateProductInput) error {
	bind := func(kind domain.TermKind, identifier string, target **string) error {
		if identifier == "" {
			return nil
		}
		id, err := s.resolver.Resolve(ctx, kind, identifier)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.InvalidInput(fmt.Sprintf("unknown %s %q", kind, identifier))
			}
			return err
		}
		*target = &id
		return nil
	}

	if err := bind(domain.KindCategory, input.Category, &p.CategoryID); err != nil {
		return err
	}
	if err := bind(domain.KindSubcategory, input.Subcategory, &p.SubcategoryID); err != nil {
		return err
	}
	if err := bind(domain.KindBrand, input.Brand, &p.BrandID); err != nil {
		return err
	}
	return bind(domain.KindProductType, input.ProductType, &p.ProductTypeID)
}

// GetProduct retrieves a product by ID and records the view.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	if s.events != nil {
		s.events.ProductViewed(ctx, p.ID)
	}
	return p, nil
}

// GetProductBySlug retrieves a product by slug and records the view.
func (s *CatalogService) GetProductBySlug(ctx context.Context, productSlug string) (*domain.Product, error) {
	p, err := s.products.GetBySlug(ctx, productSlug)
	if err != nil {
		return nil, fmt.Errorf("get product by slug %s: %w", productSlug, err)
	}
	if s.events != nil {
		s.events.ProductViewed(ctx, p.ID)
	}
	return p, nil
}

// ListProducts returns products matching the filter with the total count.
func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// UpdateProductInput carries admin input for updating a product. Nil
// fields are left unchanged.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Images      []string
	Price       *int64
	SalePrice   *int64
	ClearSale   bool
	Status      *string
	Category    string
	Subcategory string
	Brand       string
	ProductType string
}

// UpdateProduct applies a partial update to a product.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("product name must not be empty")
		}
		p.Name = *input.Name
		p.Slug = slug.Make(*input.Name)
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Images != nil {
		p.Images = input.Images
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return nil, apperrors.InvalidInput("price must be positive")
		}
		p.Price = *input.Price
	}
	if input.ClearSale {
		p.SalePrice = nil
	} else if input.SalePrice != nil {
		p.SalePrice = input.SalePrice
	}
	if p.SalePrice != nil && *p.SalePrice >= p.Price {
		return nil, apperrors.InvalidInput("sale price must be below the base price")
	}
	if input.Status != nil {
		p.Status = *input.Status
	}

	if err := s.attachTaxonomy(ctx, p, CreateProductInput{
		Category:    input.Category,
		Subcategory: input.Subcategory,
		Brand:       input.Brand,
		ProductType: input.ProductType,
	}); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}

	s.logger.Info("product updated", slog.String("product_id", p.ID))
	return p, nil
}

// DeleteProduct removes a product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	s.logger.Info("product deleted", slog.String("product_id", id))
	return nil
}

// CreateTerm creates a taxonomy term. For subcategories, parent accepts a
// flexible category identifier.
func (s *CatalogService) CreateTerm(ctx context.Context, kind domain.TermKind, name, parent string) (*domain.Term, error) {
	if !kind.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown taxonomy %q", kind))
	}
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}

	term := domain.NewTerm(kind, name, slug.Make(name))

	if kind == domain.KindSubcategory {
		if parent == "" {
			return nil, apperrors.InvalidInput("subcategory requires a parent category")
		}
		parentID, err := s.resolver.Resolve(ctx, domain.KindCategory, parent)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.InvalidInput(fmt.Sprintf("unknown category %q", parent))
			}
			return nil, err
		}
		term.ParentID = &parentID
	}

	if err := s.terms.Create(ctx, term); err != nil {
		return nil, fmt.Errorf("create %s: %w", kind, err)
	}

	s.logger.Info("taxonomy term created",
		slog.String("kind", string(kind)),
		slog.String("term_id", term.ID))
	return term, nil
}

// ListTerms returns all terms of a taxonomy.
func (s *CatalogService) ListTerms(ctx context.Context, kind domain.TermKind) ([]domain.Term, error) {
	if !kind.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown taxonomy %q", kind))
	}
	terms, err := s.terms.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return terms, nil
}

// DeleteTerm removes a taxonomy term, resolving a flexible identifier.
func (s *CatalogService) DeleteTerm(ctx context.Context, kind domain.TermKind, identifier string) error {
	id, err := s.resolver.Resolve(ctx, kind, identifier)
	if err != nil {
		return err
	}
	if err := s.terms.Delete(ctx, kind, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	return nil
}

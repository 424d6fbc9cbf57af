// Package postgres implements the catalog repositories on PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tidegrove/storefront/internal/catalog/domain"
	"github.com/tidegrove/storefront/internal/catalog/repository"
	"github.com/tidegrove/storefront/pkg/database"
	apperrors "github.com/tidegrove/storefront/pkg/errors"
)

const productColumns = `id, name, slug, description, images, price, sale_price, currency,
		brand_id, category_id, subcategory_id, product_type_id, status, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	imagesJSON, err := json.Marshal(p.Images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}

	query := `
		INSERT INTO products (id, name, slug, description, images, price, sale_price, currency,
			brand_id, category_id, subcategory_id, product_type_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err = r.db.Exec(ctx, query,
		p.ID, p.Name, p.Slug, p.Description, imagesJSON, p.Price, p.SalePrice, p.Currency,
		p.BrandID, p.CategoryID, p.SubcategoryID, p.ProductTypeID, p.Status, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetBySlug retrieves a product by its slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`
	return r.scanOne(ctx, query, slug)
}

// List returns products matching the filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	add := func(cond string, value any) {
		conditions = append(conditions, fmt.Sprintf(cond, argIndex))
		args = append(args, value)
		argIndex++
	}

	if filter.CategoryID != nil {
		add("category_id = $%d", *filter.CategoryID)
	}
	if filter.SubcategoryID != nil {
		add("subcategory_id = $%d", *filter.SubcategoryID)
	}
	if filter.BrandID != nil {
		add("brand_id = $%d", *filter.BrandID)
	}
	if filter.ProductTypeID != nil {
		add("product_type_id = $%d", *filter.ProductTypeID)
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}
	if filter.OnSale != nil {
		if *filter.OnSale {
			conditions = append(conditions, "sale_price IS NOT NULL")
		} else {
			conditions = append(conditions, "sale_price IS NULL")
		}
	}
	if filter.MinPrice != nil {
		add("COALESCE(sale_price, price) >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("COALESCE(sale_price, price) <= $%d", *filter.MaxPrice)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// count(*) OVER() yields the total in the same query.
	query := fmt.Sprintf(`
		SELECT `+productColumns+`, count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		products   []domain.Product
		totalCount int
	)
	for rows.Next() {
		var (
			p          domain.Product
			imagesJSON []byte
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.Description, &imagesJSON, &p.Price, &p.SalePrice, &p.Currency,
			&p.BrandID, &p.CategoryID, &p.SubcategoryID, &p.ProductTypeID, &p.Status, &p.CreatedAt, &p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		if err := unmarshalImages(imagesJSON, &p); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}
	return products, totalCount, nil
}

// Update modifies an existing product.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	imagesJSON, err := json.Marshal(p.Images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}

	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, slug = $2, description = $3, images = $4, price = $5, sale_price = $6,
		    currency = $7, brand_id = $8, category_id = $9, subcategory_id = $10,
		    product_type_id = $11, status = $12, updated_at = $13
		WHERE id = $14`

	ct, err := r.db.Exec(ctx, query,
		p.Name, p.Slug, p.Description, imagesJSON, p.Price, p.SalePrice,
		p.Currency, p.BrandID, p.CategoryID, p.SubcategoryID,
		p.ProductTypeID, p.Status, p.UpdatedAt, p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}
	return nil
}

// Delete removes a product by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

func (r *ProductRepository) scanOne(ctx context.Context, query string, arg any) (*domain.Product, error) {
	var (
		p          domain.Product
		imagesJSON []byte
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &imagesJSON, &p.Price, &p.SalePrice, &p.Currency,
		&p.BrandID, &p.CategoryID, &p.SubcategoryID, &p.ProductTypeID, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("product", fmt.Sprint(arg))
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if err := unmarshalImages(imagesJSON, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func unmarshalImages(raw []byte, p *domain.Product) error {
	p.Images = []string{}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &p.Images); err != nil {
		return fmt.Errorf("unmarshal images: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

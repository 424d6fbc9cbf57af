// Package postgres implements the wishlist repository on PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidegrove/storefront/internal/wishlist/domain"
	"github.com/tidegrove/storefront/pkg/database"
	apperrors "github.com/tidegrove/storefront/pkg/errors"
)

// WishlistRepository implements repository.WishlistRepository using
// PostgreSQL.
type WishlistRepository struct {
	db database.DBTX
}

// NewWishlistRepository creates a PostgreSQL-backed wishlist repository.
func NewWishlistRepository(db database.DBTX) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// Add inserts a product into the user's wishlist. ON CONFLICT DO NOTHING
// makes the operation idempotent.
func (r *WishlistRepository) Add(ctx context.Context, userID, productID string) error {
	query := `
		INSERT INTO wishlists (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, userID, productID); err != nil {
		return fmt.Errorf("add to wishlist: %w", err)
	}
	return nil
}

// Remove deletes a product from the user's wishlist.
func (r *WishlistRepository) Remove(ctx context.Context, userID, productID string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM wishlists WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("remove from wishlist: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("wishlist item", productID)
	}
	return nil
}

// ListProducts returns the user's full wishlist joined with product
// snapshots, newest first. Wishlists are not paginated: the API contract
// returns the canonical full list on every read and mutation.
func (r *WishlistRepository) ListProducts(ctx context.Context, userID string) ([]domain.Product, error) {
	query := `
		SELECT p.id, p.name, p.slug, p.images, p.price, p.sale_price, p.status
		FROM wishlists w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var (
			p          domain.Product
			imagesJSON []byte
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &imagesJSON, &p.Price, &p.SalePrice, &p.Status); err != nil {
			return nil, fmt.Errorf("scan wishlist product: %w", err)
		}
		p.Images = []string{}
		if len(imagesJSON) > 0 {
			if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
				return nil, fmt.Errorf("unmarshal images: %w", err)
			}
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist rows: %w", err)
	}
	return products, nil
}

// Exists reports whether the product is in the user's wishlist.
func (r *WishlistRepository) Exists(ctx context.Context, userID, productID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM wishlists WHERE user_id = $1 AND product_id = $2)`,
		userID, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check wishlist item: %w", err)
	}
	return exists, nil
}

// Clear removes every item from the user's wishlist.
func (r *WishlistRepository) Clear(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM wishlists WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear wishlist: %w", err)
	}
	return nil
}

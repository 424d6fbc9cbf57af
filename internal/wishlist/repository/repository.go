// Package repository defines the persistence interface for wishlists.
package repository

import (
	"context"

	"github.com/tidegrove/storefront/internal/wishlist/domain"
)

// WishlistRepository is the persistence interface for wishlists.
type WishlistRepository interface {
	// Add inserts a product into the user's wishlist; adding a product
	// already present is a no-op.
	Add(ctx context.Context, userID, productID string) error

	// Remove deletes a product from the user's wishlist, returning
	// ErrNotFound when it was not there.
	Remove(ctx context.Context, userID, productID string) error

	// ListProducts returns the user's full wishlist joined with product
	// snapshots, newest first.
	ListProducts(ctx context.Context, userID string) ([]domain.Product, error)

	// Exists reports whether the product is in the user's wishlist.
	Exists(ctx context.Context, userID, productID string) (bool, error)

	// Clear removes every item from the user's wishlist.
	Clear(ctx context.Context, userID string) error
}

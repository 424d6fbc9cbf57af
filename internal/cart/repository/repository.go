// Package repository defines the persistence interface for carts.
package repository

import (
	"context"

	"github.com/tidegrove/storefront/internal/cart/domain"
)

// CartRepository is the persistence interface for carts.
type CartRepository interface {
	// Get retrieves a cart by user ID, returning ErrNotFound when absent.
	Get(ctx context.Context, userID string) (*domain.Cart, error)

	// Save persists a cart unconditionally.
	Save(ctx context.Context, cart *domain.Cart) error

	// SaveIfVersion persists a cart only when the stored version still
	// equals expectedVersion, incrementing the version on success. It
	// reports false without error when a concurrent write won.
	SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error)

	// Delete removes a cart. Deleting an absent cart is not an error.
	Delete(ctx context.Context, userID string) error
}

// Package repository defines the persistence interface for orders.
package repository

import (
	"context"

	"github.com/tidegrove/storefront/internal/order/domain"
)

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	UserID  *string
	Status  *string
	Page    int
	PerPage int
}

// OrderRepository is the persistence interface for orders.
type OrderRepository interface {
	// Create inserts a new order and its items atomically.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders matching the filter plus the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// UpdateStatus changes the status of an order and optionally sets a
	// cancel reason.
	UpdateStatus(ctx context.Context, id, status, reason string) error
}

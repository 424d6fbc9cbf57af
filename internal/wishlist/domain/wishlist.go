// Package domain holds the server-side wishlist model.
package domain

import "time"

// Item is one wishlist entry.
type Item struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Product is the product snapshot returned with wishlist reads, joined
// from the catalog so clients can render the list without extra fetches.
type Product struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	Images    []string `json:"images"`
	Price     int64    `json:"price"`
	SalePrice *int64   `json:"sale_price,omitempty"`
	Status    string   `json:"status"`
}

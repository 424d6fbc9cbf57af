// Package domain holds the server-side cart model.
package domain

import "time"

// Cart is a user's server cart. Version supports optimistic locking in
// the repository; aggregates are always derived from Items, never stored.
type Cart struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Items     []Item    `json:"items"`
	Currency  string    `json:"currency"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Item is a single cart line with its product snapshot.
type Item struct {
	ProductID string   `json:"product_id"`
	Name      string   `json:"name"`
	Images    []string `json:"images"`
	Price     int64    `json:"price"`
	SalePrice *int64   `json:"sale_price,omitempty"`
	Quantity  int      `json:"quantity"`
}

// EffectivePrice returns the sale price when present, the base price
// otherwise.
func (i *Item) EffectivePrice() int64 {
	if i.SalePrice != nil {
		return *i.SalePrice
	}
	return i.Price
}

// Subtotal computes the cart total in minor units from the items.
func (c *Cart) Subtotal() int64 {
	var total int64
	for i := range c.Items {
		total += c.Items[i].EffectivePrice() * int64(c.Items[i].Quantity)
	}
	return total
}

// ItemCount returns the total quantity across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for i := range c.Items {
		count += c.Items[i].Quantity
	}
	return count
}

// FindItem returns the index of the line for productID, or -1. O(n), but
// carts are bounded small and the slice is the storage format.
func (c *Cart) FindItem(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

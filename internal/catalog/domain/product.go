// Package domain holds the catalog entities: products, taxonomy terms, and
// reviews.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product statuses.
const (
	ProductStatusActive   = "active"
	ProductStatusDraft    = "draft"
	ProductStatusArchived = "archived"
)

// Product is a sellable catalog entry. Prices are integer minor units;
// SalePrice is nil when the product is not discounted and, when set, must
// be below Price.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Images        []string  `json:"images"`
	Price         int64     `json:"price"`
	SalePrice     *int64    `json:"sale_price,omitempty"`
	Currency      string    `json:"currency"`
	BrandID       *string   `json:"brand_id,omitempty"`
	CategoryID    *string   `json:"category_id,omitempty"`
	SubcategoryID *string   `json:"subcategory_id,omitempty"`
	ProductTypeID *string   `json:"product_type_id,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewProduct creates a Product with a fresh ID and timestamps.
func NewProduct(name, slug string, price int64) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      slug,
		Price:     price,
		Currency:  "USD",
		Status:    ProductStatusDraft,
		Images:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EffectivePrice returns the sale price when present, the base price
// otherwise.
func (p *Product) EffectivePrice() int64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// OnSale reports whether a sale price is set.
func (p *Product) OnSale() bool {
	return p.SalePrice != nil
}

// Purchasable reports whether the product can go into a cart.
func (p *Product) Purchasable() bool {
	return p.Status == ProductStatusActive
}

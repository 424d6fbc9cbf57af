package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer rating for a product. One review per user per
// product; the repository enforces the uniqueness.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewReview creates a Review with a fresh ID and timestamps.
func NewReview(productID, userID string, rating int, comment string) *Review {
	now := time.Now().UTC()
	return &Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RatingSummary is the aggregate rating for a product.
type RatingSummary struct {
	ProductID string  `json:"product_id"`
	Average   float64 `json:"average"`
	Count     int     `json:"count"`
}

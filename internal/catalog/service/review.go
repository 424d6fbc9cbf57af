package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tidegrove/storefront/internal/catalog/domain"
	"github.com/tidegrove/storefront/internal/catalog/repository"
	apperrors "github.com/tidegrove/storefront/pkg/errors"
)

// ReviewService implements product review operations.
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewReviewService creates a ReviewService.
func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository, logger *slog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, products: products, logger: logger}
}

// Create stores a review after checking the product exists. Ratings are
// 1 through 5; a second review from the same user for the same product is
// rejected by the repository's uniqueness constraint.
func (s *ReviewService) Create(ctx context.Context, productID, userID string, rating int, comment string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("check product %s: %w", productID, err)
	}

	review := domain.NewReview(productID, userID, rating, comment)
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info("review created",
		slog.String("review_id", review.ID),
		slog.String("product_id", productID))
	return review, nil
}

// ListByProduct returns reviews for a product with the total count.
func (s *ReviewService) ListByProduct(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, error) {
	reviews, total, err := s.reviews.ListByProduct(ctx, productID, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews for %s: %w", productID, err)
	}
	return reviews, total, nil
}

// Summary returns the aggregate rating for a product.
func (s *ReviewService) Summary(ctx context.Context, productID string) (*domain.RatingSummary, error) {
	summary, err := s.reviews.Summary(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("summarize reviews for %s: %w", productID, err)
	}
	return summary, nil
}

// Delete removes the caller's review.
func (s *ReviewService) Delete(ctx context.Context, id, userID string) error {
	if err := s.reviews.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("delete review %s: %w", id, err)
	}
	return nil
}

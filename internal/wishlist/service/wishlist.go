// Package service implements the server-side wishlist business logic.
// Every read and mutation returns the canonical full list so clients can
// replace local state wholesale instead of patching it.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidegrove/storefront/internal/wishlist/domain"
	"github.com/tidegrove/storefront/internal/wishlist/repository"
	apperrors "github.com/tidegrove/storefront/pkg/errors"
)

// ProductChecker verifies a product exists before it can be wishlisted.
type ProductChecker interface {
	ProductExists(ctx context.Context, id string) error
}

// WishlistService implements the wishlist operations.
type WishlistService struct {
	repo     repository.WishlistRepository
	products ProductChecker
	logger   *slog.Logger
}

// NewWishlistService creates a WishlistService.
func NewWishlistService(repo repository.WishlistRepository, products ProductChecker, logger *slog.Logger) *WishlistService {
	return &WishlistService{repo: repo, products: products, logger: logger}
}

// List returns the user's full wishlist.
func (s *WishlistService) List(ctx context.Context, userID string) ([]domain.Product, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	products, err := s.repo.ListProducts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	return products, nil
}

// Add puts a product on the wishlist and returns the updated full list.
// Adding a product already present is a no-op, not an error.
func (s *WishlistService) Add(ctx context.Context, userID, productID string) ([]domain.Product, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	if err := s.products.ProductExists(ctx, productID); err != nil {
		return nil, fmt.Errorf("check product %s: %w", productID, err)
	}

	if err := s.repo.Add(ctx, userID, productID); err != nil {
		return nil, fmt.Errorf("add wishlist item: %w", err)
	}

	s.logger.InfoContext(ctx, "wishlist item added",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)
	return s.List(ctx, userID)
}

// Remove takes a product off the wishlist and returns the updated full
// list. Removing an absent product is treated as a no-op.
func (s *WishlistService) Remove(ctx context.Context, userID, productID string) ([]domain.Product, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	if err := s.repo.Remove(ctx, userID, productID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("remove wishlist item: %w", err)
	}

	s.logger.InfoContext(ctx, "wishlist item removed",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)
	return s.List(ctx, userID)
}

// Contains reports whether the product is on the user's wishlist.
func (s *WishlistService) Contains(ctx context.Context, userID, productID string) (bool, error) {
	if userID == "" {
		return false, apperrors.InvalidInput("user id is required")
	}
	ok, err := s.repo.Exists(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("check wishlist item: %w", err)
	}
	return ok, nil
}

// Clear empties the user's wishlist.
func (s *WishlistService) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}
	if err := s.repo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear wishlist: %w", err)
	}
	s.logger.InfoContext(ctx, "wishlist cleared", slog.String("user_id", userID))
	return nil
}

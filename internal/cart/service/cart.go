// Package service implements the server-side cart business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tidegrove/storefront/internal/cart/domain"
	"github.com/tidegrove/storefront/internal/cart/repository"
	apperrors "github.com/tidegrove/storefront/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single line.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct lines in a cart.
	MaxItemsPerCart = 50
)

// ProductInfo is the product snapshot the cart stores per line.
type ProductInfo struct {
	ID        string
	Name      string
	Images    []string
	Price     int64
	SalePrice *int64
	Active    bool
}

// ProductSource supplies product snapshots for cart lines. The catalog
// service implements it via an adapter in the app wiring.
type ProductSource interface {
	Product(ctx context.Context, id string) (*ProductInfo, error)
}

// EventPublisher publishes cart domain events. Implementations must not
// block the request path on broker failures.
type EventPublisher interface {
	CartUpdated(ctx context.Context, cart *domain.Cart)
	CartCleared(ctx context.Context, userID string)
}

// CartService implements the cart operations.
type CartService struct {
	repo     repository.CartRepository
	products ProductSource
	events   EventPublisher
	logger   *slog.Logger
	cartTTL  time.Duration
}

// NewCartService creates a CartService. events may be nil when no broker
// is configured.
func NewCartService(
	repo repository.CartRepository,
	products ProductSource,
	events EventPublisher,
	logger *slog.Logger,
	cartTTL time.Duration,
) *CartService {
	return &CartService{
		repo:     repo,
		products: products,
		events:   events,
		logger:   logger,
		cartTTL:  cartTTL,
	}
}

// GetCart retrieves the user's cart, returning an empty cart when none
// exists.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.newEmptyCart(userID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// AddItem adds quantity of a product to the user's cart, merging with an
// existing line for the same product. The product snapshot is fetched from
// the catalog so clients cannot forge prices. Optimistic locking rejects
// concurrent modification.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	product, err := s.products.Product(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("fetch product %s: %w", productID, err)
	}
	if !product.Active {
		return nil, apperrors.InvalidInput(fmt.Sprintf("product %s is not available for purchase", productID))
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	expectedVersion := cart.Version

	if i := cart.FindItem(productID); i >= 0 {
		newQty := cart.Items[i].Quantity + quantity
		if newQty > MaxQuantityPerItem {
			return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
		}
		cart.Items[i].Quantity = newQty
		// Refresh the snapshot in case the catalog changed.
		cart.Items[i].Name = product.Name
		cart.Items[i].Images = product.Images
		cart.Items[i].Price = product.Price
		cart.Items[i].SalePrice = product.SalePrice
	} else {
		if len(cart.Items) >= MaxItemsPerCart {
			return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
		}
		cart.Items = append(cart.Items, domain.Item{
			ProductID: product.ID,
			Name:      product.Name,
			Images:    product.Images,
			Price:     product.Price,
			SalePrice: product.SalePrice,
			Quantity:  quantity,
		})
	}

	if err := s.save(ctx, cart, expectedVersion); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)
	return cart, nil
}

// UpdateItemQuantity sets the quantity of an existing line. Quantity 0
// removes the line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart for update: %w", err)
	}
	expectedVersion := cart.Version

	i := cart.FindItem(productID)
	if i < 0 {
		return nil, apperrors.NotFound("cart item", productID)
	}
	if quantity == 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	} else {
		cart.Items[i].Quantity = quantity
	}

	if err := s.save(ctx, cart, expectedVersion); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "cart item updated",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)
	return cart, nil
}

// RemoveItem removes a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	return s.UpdateItemQuantity(ctx, userID, productID, 0)
}

// Clear deletes the user's cart.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	if s.events != nil {
		s.events.CartCleared(ctx, userID)
	}
	s.logger.InfoContext(ctx, "cart cleared", slog.String("user_id", userID))
	return nil
}

func (s *CartService) save(ctx context.Context, cart *domain.Cart, expectedVersion int) error {
	now := time.Now().UTC()
	cart.UpdatedAt = now
	cart.ExpiresAt = now.Add(s.cartTTL)

	ok, err := s.repo.SaveIfVersion(ctx, cart, expectedVersion)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	if !ok {
		return apperrors.Conflict("cart was modified concurrently, please retry")
	}

	if s.events != nil {
		s.events.CartUpdated(ctx, cart)
	}
	return nil
}

func (s *CartService) getOrCreateCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.newEmptyCart(userID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) newEmptyCart(userID string) *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     []domain.Item{},
		Currency:  "USD",
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.cartTTL),
	}
}

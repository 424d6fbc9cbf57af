// Package service implements checkout and order management. Checkout
// converts the user's server cart into an immutable order and clears
// the cart afterwards.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	cartdomain "github.com/tidegrove/storefront/internal/cart/domain"
	"github.com/tidegrove/storefront/internal/order/domain"
	"github.com/tidegrove/storefront/internal/order/repository"
	apperrors "github.com/tidegrove/storefront/pkg/errors"
)

// CartSource provides access to the user's server cart.
type CartSource interface {
	GetCart(ctx context.Context, userID string) (*cartdomain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

// EventPublisher publishes order lifecycle events. A nil publisher
// disables eventing.
type EventPublisher interface {
	OrderCreated(ctx context.Context, order *domain.Order) error
	OrderStatusChanged(ctx context.Context, order *domain.Order) error
}

// OrderService implements the business logic for order operations.
type OrderService struct {
	repo     repository.OrderRepository
	carts    CartSource
	producer EventPublisher
	logger   *slog.Logger
}

// NewOrderService creates an order service.
func NewOrderService(repo repository.OrderRepository, carts CartSource, producer EventPublisher, logger *slog.Logger) *OrderService {
	return &OrderService{
		repo:     repo,
		carts:    carts,
		producer: producer,
		logger:   logger,
	}
}

// CheckoutInput holds the parameters for placing an order.
type CheckoutInput struct {
	ShippingAddress *domain.Address
	Notes           string
}

// Checkout places an order from the user's cart. Line prices are the
// effective prices already captured in the cart, so a sale ending
// mid-checkout does not change the total. The cart is cleared once the
// order is stored.
func (s *OrderService) Checkout(ctx context.Context, userID string, input CheckoutInput) (*domain.Order, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if input.ShippingAddress == nil {
		return nil, apperrors.InvalidInput("shipping address is required")
	}
	if err := validateAddress(input.ShippingAddress); err != nil {
		return nil, err
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	now := time.Now().UTC()
	orderID := uuid.New().String()

	var subtotal int64
	items := make([]domain.OrderItem, len(cart.Items))
	for i, ci := range cart.Items {
		items[i] = domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: ci.ProductID,
			Name:      ci.Name,
			Price:     ci.EffectivePrice(),
			Quantity:  ci.Quantity,
		}
		subtotal += items[i].LineTotal()
	}

	order := &domain.Order{
		ID:              orderID,
		UserID:          userID,
		Status:          domain.OrderStatusPending,
		Items:           items,
		SubtotalAmount:  subtotal,
		ShippingAmount:  0,
		TotalAmount:     subtotal,
		Currency:        strings.ToUpper(cart.Currency),
		ShippingAddress: input.ShippingAddress,
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		// The order is already placed; a stale cart is recoverable.
		s.logger.WarnContext(ctx, "failed to clear cart after checkout",
			slog.String("order_id", order.ID),
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	if s.producer != nil {
		if err := s.producer.OrderCreated(ctx, order); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order.created event",
				slog.String("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
		slog.Int64("total_amount", order.TotalAmount),
	)

	return order, nil
}

// GetOrder retrieves an order. When requesterID is non-empty the order
// must belong to that user; admins pass an empty requesterID.
func (s *OrderService) GetOrder(ctx context.Context, id, requesterID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	if requesterID != "" && order.UserID != requesterID {
		// Hide the order's existence from other users.
		return nil, apperrors.NotFound("order", id)
	}
	return order, nil
}

// ListOrders returns a filtered, paginated list of orders.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}
	if filter.Status != nil && !domain.IsValidStatus(*filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", *filter.Status))
	}

	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus transitions an order to a new status, enforcing the
// allowed transition graph.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status, reason string) (*domain.Order, error) {
	if !domain.IsValidStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", status))
	}
	if status == domain.OrderStatusCanceled && reason == "" {
		return nil, apperrors.InvalidInput("a reason is required when canceling an order")
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	if !order.CanTransitionTo(status) {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot transition order from %q to %q", order.Status, status))
	}

	if err := s.repo.UpdateStatus(ctx, id, status, reason); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	order.Status = status
	order.CanceledReason = reason
	order.UpdatedAt = time.Now().UTC()

	if s.producer != nil {
		if err := s.producer.OrderStatusChanged(ctx, order); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
				slog.String("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return order, nil
}

// CancelOrder cancels the user's own order while it is still pending
// or confirmed.
func (s *OrderService) CancelOrder(ctx context.Context, id, userID, reason string) (*domain.Order, error) {
	if reason == "" {
		reason = "canceled by customer"
	}

	order, err := s.GetOrder(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !order.CanTransitionTo(domain.OrderStatusCanceled) {
		return nil, apperrors.Conflict(fmt.Sprintf("order in status %q can no longer be canceled", order.Status))
	}

	if err := s.repo.UpdateStatus(ctx, id, domain.OrderStatusCanceled, reason); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	order.Status = domain.OrderStatusCanceled
	order.CanceledReason = reason
	order.UpdatedAt = time.Now().UTC()

	if s.producer != nil {
		if err := s.producer.OrderStatusChanged(ctx, order); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
				slog.String("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return order, nil
}

func validateAddress(addr *domain.Address) error {
	switch {
	case addr.FullName == "":
		return apperrors.InvalidInput("shipping address full_name is required")
	case addr.AddressLine == "":
		return apperrors.InvalidInput("shipping address address_line is required")
	case addr.City == "":
		return apperrors.InvalidInput("shipping address city is required")
	case addr.PostalCode == "":
		return apperrors.InvalidInput("shipping address postal_code is required")
	case addr.Country == "":
		return apperrors.InvalidInput("shipping address country is required")
	}
	return nil
}

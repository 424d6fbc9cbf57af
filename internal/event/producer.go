// Package event publishes storefront domain events to Kafka. The
// Producer satisfies the EventPublisher interfaces declared by the
// catalog, cart, order, and user services, so wiring is a matter of
// passing the same instance everywhere.
package event

import (
	"context"
	"fmt"
	"log/slog"

	cartdomain "github.com/tidegrove/storefront/internal/cart/domain"
	orderdomain "github.com/tidegrove/storefront/internal/order/domain"
	userdomain "github.com/tidegrove/storefront/internal/user/domain"
	pkgkafka "github.com/tidegrove/storefront/pkg/kafka"
)

// Kafka topics for storefront domain events.
const (
	TopicAnalytics = "storefront.analytics"
	TopicCart      = "storefront.cart"
	TopicOrders    = "storefront.orders"
	TopicUsers     = "storefront.users"
)

// Event type constants.
const (
	TypeProductViewed      = "product.viewed"
	TypeCartUpdated        = "cart.updated"
	TypeCartCleared        = "cart.cleared"
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
	TypeUserRegistered     = "user.registered"
)

const source = "storefront-api"

// Producer publishes domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a domain event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// ProductViewedData is the payload for product.viewed.
type ProductViewedData struct {
	ProductID string `json:"product_id"`
}

// ProductViewed publishes a product.viewed analytics event. Failures
// are logged, never surfaced; analytics must not affect reads.
func (p *Producer) ProductViewed(ctx context.Context, productID string) {
	data := ProductViewedData{ProductID: productID}
	if err := p.publish(ctx, TopicAnalytics, TypeProductViewed, productID, "product", data); err != nil {
		p.logger.WarnContext(ctx, "failed to publish product.viewed event",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
}

// CartUpdatedData is the payload for cart.updated.
type CartUpdatedData struct {
	UserID    string `json:"user_id"`
	ItemCount int    `json:"item_count"`
	Subtotal  int64  `json:"subtotal"`
	Currency  string `json:"currency"`
}

// CartUpdated publishes a cart.updated event. Failures are logged.
func (p *Producer) CartUpdated(ctx context.Context, cart *cartdomain.Cart) {
	data := CartUpdatedData{
		UserID:    cart.UserID,
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal(),
		Currency:  cart.Currency,
	}
	if err := p.publish(ctx, TopicCart, TypeCartUpdated, cart.UserID, "cart", data); err != nil {
		p.logger.WarnContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", cart.UserID),
			slog.String("error", err.Error()),
		)
	}
}

// CartClearedData is the payload for cart.cleared.
type CartClearedData struct {
	UserID string `json:"user_id"`
}

// CartCleared publishes a cart.cleared event. Failures are logged.
func (p *Producer) CartCleared(ctx context.Context, userID string) {
	if err := p.publish(ctx, TopicCart, TypeCartCleared, userID, "cart", CartClearedData{UserID: userID}); err != nil {
		p.logger.WarnContext(ctx, "failed to publish cart.cleared event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

// OrderItemData is the event payload for an order line.
type OrderItemData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// OrderCreatedData is the payload for order.created, a full order
// snapshot.
type OrderCreatedData struct {
	ID              string               `json:"id"`
	UserID          string               `json:"user_id"`
	Status          string               `json:"status"`
	Items           []OrderItemData      `json:"items"`
	SubtotalAmount  int64                `json:"subtotal_amount"`
	ShippingAmount  int64                `json:"shipping_amount"`
	TotalAmount     int64                `json:"total_amount"`
	Currency        string               `json:"currency"`
	ShippingAddress *orderdomain.Address `json:"shipping_address,omitempty"`
}

// OrderCreated publishes an order.created event.
func (p *Producer) OrderCreated(ctx context.Context, order *orderdomain.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemData{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	data := OrderCreatedData{
		ID:              order.ID,
		UserID:          order.UserID,
		Status:          order.Status,
		Items:           items,
		SubtotalAmount:  order.SubtotalAmount,
		ShippingAmount:  order.ShippingAmount,
		TotalAmount:     order.TotalAmount,
		Currency:        order.Currency,
		ShippingAddress: order.ShippingAddress,
	}

	return p.publish(ctx, TopicOrders, TypeOrderCreated, order.ID, "order", data)
}

// OrderStatusChangedData is the payload for order.status_changed.
type OrderStatusChangedData struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
}

// OrderStatusChanged publishes an order.status_changed event.
func (p *Producer) OrderStatusChanged(ctx context.Context, order *orderdomain.Order) error {
	data := OrderStatusChangedData{
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  order.Status,
		Reason:  order.CanceledReason,
	}
	return p.publish(ctx, TopicOrders, TypeOrderStatusChanged, order.ID, "order", data)
}

// UserRegisteredData is the payload for user.registered.
type UserRegisteredData struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UserRegistered publishes a user.registered event.
func (p *Producer) UserRegistered(ctx context.Context, user *userdomain.User) error {
	data := UserRegisteredData{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	return p.publish(ctx, TopicUsers, TypeUserRegistered, user.ID, "user", data)
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(eventType, aggregateID, aggregateType, source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}

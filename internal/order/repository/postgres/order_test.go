package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidegrove/storefront/internal/order/domain"
	"github.com/tidegrove/storefront/internal/order/repository"
	"github.com/tidegrove/storefront/pkg/database"
	apperrors "github.com/tidegrove/storefront/pkg/errors"
)

func newTestRepo(t *testing.T) (*OrderRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewOrderRepository(mock)
	return repo, mock
}

func sampleOrder() *domain.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Order{
		ID:             "order-001",
		UserID:         "user-001",
		Status:         domain.OrderStatusPending,
		SubtotalAmount: 10000,
		ShippingAmount: 1000,
		TotalAmount:    11000,
		Currency:       "USD",
		ShippingAddress: &domain.Address{
			FullName:    "Ada Rivers",
			AddressLine: "123 Main St",
			City:        "Portland",
			PostalCode:  "97201",
			Country:     "US",
		},
		CreatedAt: now,
		UpdatedAt: now,
		Items: []domain.OrderItem{
			{ID: "item-001", OrderID: "order-001", ProductID: "prod-001", Name: "Desk Lamp", Price: 5000, Quantity: 1},
			{ID: "item-002", OrderID: "order-001", ProductID: "prod-002", Name: "Mug", Price: 2500, Quantity: 2},
		},
	}
}

func orderCols() []string {
	return []string{
		"id", "user_id", "status", "subtotal_amount", "shipping_amount",
		"total_amount", "currency", "shipping_address", "notes",
		"canceled_reason", "created_at", "updated_at",
	}
}

func TestOrderRepository_Create_Success(t *testing.T) {
	repo, mock := newTestRepo(t)

	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(
			o.ID, o.UserID, o.Status,
			o.SubtotalAmount, o.ShippingAmount, o.TotalAmount,
			o.Currency,
			pgxmock.AnyArg(), // shipping JSON
			o.Notes, o.CanceledReason,
			o.CreatedAt, o.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	for _, item := range o.Items {
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs(item.ID, item.OrderID, item.ProductID, item.Name, item.Price, item.Quantity).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	err := repo.Create(context.Background(), o)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_InsertError(t *testing.T) {
	repo, mock := newTestRepo(t)

	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(
			o.ID, o.UserID, o.Status,
			o.SubtotalAmount, o.ShippingAmount, o.TotalAmount,
			o.Currency, pgxmock.AnyArg(), o.Notes, o.CanceledReason,
			o.CreatedAt, o.UpdatedAt,
		).
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), o)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insert order")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_Success(t *testing.T) {
	repo, mock := newTestRepo(t)

	o := sampleOrder()
	shippingJSON, err := json.Marshal(o.ShippingAddress)
	require.NoError(t, err)
	itemsJSON, err := json.Marshal(o.Items)
	require.NoError(t, err)

	cols := append(orderCols(), "items")
	mock.ExpectQuery("SELECT(.+)FROM orders o").
		WithArgs(o.ID).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(
			o.ID, o.UserID, o.Status, o.SubtotalAmount, o.ShippingAmount,
			o.TotalAmount, o.Currency, shippingJSON, o.Notes,
			o.CanceledReason, o.CreatedAt, o.UpdatedAt, itemsJSON,
		))

	got, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, "Desk Lamp", got.Items[0].Name)
	require.NotNil(t, got.ShippingAddress)
	assert.Equal(t, "Portland", got.ShippingAddress.City)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT(.+)FROM orders o").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(append(orderCols(), "items")))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_List_FiltersByUser(t *testing.T) {
	repo, mock := newTestRepo(t)

	o := sampleOrder()
	shippingJSON, err := json.Marshal(o.ShippingAddress)
	require.NoError(t, err)

	cols := append(orderCols(), "total_count")
	mock.ExpectQuery("SELECT(.+)FROM orders").
		WithArgs(o.UserID, 20, 0).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(
			o.ID, o.UserID, o.Status, o.SubtotalAmount, o.ShippingAmount,
			o.TotalAmount, o.Currency, shippingJSON, o.Notes,
			o.CanceledReason, o.CreatedAt, o.UpdatedAt, 1,
		))

	mock.ExpectQuery("SELECT(.+)FROM order_items").
		WithArgs([]string{o.ID}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "product_id", "name", "price", "quantity"}).
			AddRow("item-001", o.ID, "prod-001", "Desk Lamp", int64(5000), 1))

	userID := o.UserID
	orders, total, err := repo.List(context.Background(), repository.OrderFilter{UserID: &userID, Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "prod-001", orders[0].Items[0].ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_List_Empty(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT(.+)FROM orders").
		WithArgs(20, 0).
		WillReturnRows(pgxmock.NewRows(append(orderCols(), "total_count")))

	orders, total, err := repo.List(context.Background(), repository.OrderFilter{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdateStatus_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("UPDATE orders").
		WithArgs(domain.OrderStatusConfirmed, "", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateStatus(context.Background(), "missing", domain.OrderStatusConfirmed, "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

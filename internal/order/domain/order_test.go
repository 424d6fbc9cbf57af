package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	item := OrderItem{Price: 1999, Quantity: 3}
	assert.Equal(t, int64(5997), item.LineTotal())

	item = OrderItem{Price: 1999, Quantity: 0}
	assert.Equal(t, int64(0), item.LineTotal())
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range ValidStatuses() {
		assert.True(t, IsValidStatus(s), "expected %q to be valid", s)
	}
	assert.False(t, IsValidStatus("unknown"))
	assert.False(t, IsValidStatus(""))
	assert.False(t, IsValidStatus("PENDING")) // case-sensitive
}

func TestCanTransitionTo(t *testing.T) {
	order := &Order{Status: OrderStatusPending}
	assert.True(t, order.CanTransitionTo(OrderStatusConfirmed))
	assert.True(t, order.CanTransitionTo(OrderStatusCanceled))
	assert.False(t, order.CanTransitionTo(OrderStatusDelivered))
	assert.False(t, order.CanTransitionTo(OrderStatusPending))
}

func TestTerminalStatuses(t *testing.T) {
	delivered := &Order{Status: OrderStatusDelivered}
	canceled := &Order{Status: OrderStatusCanceled}
	for _, target := range ValidStatuses() {
		assert.False(t, delivered.CanTransitionTo(target))
		assert.False(t, canceled.CanTransitionTo(target))
	}
}

func TestCanTransitionTo_UnknownCurrentStatus(t *testing.T) {
	order := &Order{Status: "nonexistent"}
	assert.False(t, order.CanTransitionTo(OrderStatusConfirmed))
}

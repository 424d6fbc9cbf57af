package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func salePrice(v int64) *int64 { return &v }

func TestSubtotalUsesEffectivePrice(t *testing.T) {
	cart := &Cart{Items: []Item{
		{ProductID: "p1", Price: 2500, Quantity: 2},
		{ProductID: "p2", Price: 1200, SalePrice: salePrice(900), Quantity: 3},
	}}

	assert.Equal(t, int64(2*2500+3*900), cart.Subtotal())
	assert.Equal(t, 5, cart.ItemCount())
}

func TestEmptyCartTotals(t *testing.T) {
	cart := &Cart{}
	assert.Zero(t, cart.Subtotal())
	assert.Zero(t, cart.ItemCount())
}

func TestFindItem(t *testing.T) {
	cart := &Cart{Items: []Item{{ProductID: "p1"}, {ProductID: "p2"}}}
	assert.Equal(t, 1, cart.FindItem("p2"))
	assert.Equal(t, -1, cart.FindItem("p9"))
}

package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"pending", "shipped", "delivered", "canceled"} {
		st, ok := ParseStatus(valid)
		assert.True(t, ok, valid)
		assert.Equal(t, Status(valid), st)
	}
	for _, invalid := range []string{"", "shipped2", "PENDING", "returned"} {
		_, ok := ParseStatus(invalid)
		assert.False(t, ok, invalid)
	}
}

func TestDeltasFor(t *testing.T) {
	items := []OrderItem{
		{ProductID: "p1", VariantID: "v1", Qty: 2},
		{ProductID: "p1", VariantID: "v2", Qty: 1},
	}

	deduct := deltasFor(items, -1)
	assert.Equal(t, StockDelta{ProductID: "p1", VariantID: "v1", Stock: -2, Sold: 2, CountInStock: -2}, deduct[0])

	restore := deltasFor(items, +1)
	assert.Equal(t, StockDelta{ProductID: "p1", VariantID: "v2", Stock: 1, Sold: -1, CountInStock: 1}, restore[1])

	// restore is the exact inverse of deduct
	for i := range items {
		assert.Equal(t, -deduct[i].Stock, restore[i].Stock)
		assert.Equal(t, -deduct[i].Sold, restore[i].Sold)
		assert.Equal(t, -deduct[i].CountInStock, restore[i].CountInStock)
	}
}

package order_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vasiliy-maslov/class-marketplace/internal/order"
)

func TestCalculatePrices(t *testing.T) {
	tests := []struct {
		name         string
		items        []order.OrderItem
		wantItems    string
		wantShipping string
		wantTax      string
		wantTotal    string
	}{
		{
			name:         "empty",
			items:        nil,
			wantItems:    "0.00",
			wantShipping: "100.00",
			wantTax:      "0.00",
			wantTotal:    "100.00",
		},
		{
			name: "below_free_shipping",
			items: []order.OrderItem{
				{Qty: 2, Price: decimal.RequireFromString("19.99")},
			},
			wantItems:    "39.98",
			wantShipping: "100.00",
			wantTax:      "6.00",
			wantTotal:    "145.98",
		},
		{
			name: "exactly_threshold_still_pays_shipping",
			items: []order.OrderItem{
				{Qty: 1, Price: decimal.NewFromInt(100)},
			},
			wantItems:    "100.00",
			wantShipping: "100.00",
			wantTax:      "15.00",
			wantTotal:    "215.00",
		},
		{
			name: "above_threshold_free_shipping",
			items: []order.OrderItem{
				{Qty: 1, Price: decimal.RequireFromString("89.99")},
				{Qty: 3, Price: decimal.RequireFromString("10.50")},
			},
			wantItems:    "121.49",
			wantShipping: "0.00",
			wantTax:      "18.22",
			wantTotal:    "139.71",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := order.CalculatePrices(tt.items)

			assert.Equal(t, tt.wantItems, got.ItemsPrice.StringFixed(2))
			assert.Equal(t, tt.wantShipping, got.ShippingPrice.StringFixed(2))
			assert.Equal(t, tt.wantTax, got.TaxPrice.StringFixed(2))
			assert.Equal(t, tt.wantTotal, got.TotalPrice.StringFixed(2))
		})
	}
}

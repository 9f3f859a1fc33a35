package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// OrderItem.LineTotal Tests
// ============================================================================

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name  string
		price string
		qty   int
		want  string
	}{
		{"basic", "1999", 3, "5997"},
		{"fractional price", "1250.50", 2, "2501"},
		{"zero quantity", "1999", 0, "0"},
		{"zero price", "0", 5, "0"},
		{"large values", "99999999", 1000, "99999999000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := OrderItem{Price: decimal.RequireFromString(tt.price), Quantity: tt.qty}
			assert.True(t, item.LineTotal().Equal(decimal.RequireFromString(tt.want)), item.LineTotal().String())
		})
	}
}

func TestItemsSubtotal(t *testing.T) {
	o := Order{Items: []OrderItem{
		{Price: decimal.NewFromInt(1500), Quantity: 2},
		{Price: decimal.NewFromInt(300), Quantity: 1},
	}}
	assert.True(t, o.ItemsSubtotal().Equal(decimal.NewFromInt(3300)))
	assert.True(t, (&Order{}).ItemsSubtotal().IsZero())
}

// ============================================================================
// Status Tests
// ============================================================================

func TestIsValidStatus(t *testing.T) {
	for _, s := range ValidStatuses() {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus("refunded"))
	assert.False(t, IsValidStatus(""))
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCanceled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusShipped, true},
		{OrderStatusConfirmed, OrderStatusCanceled, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCanceled, false},
		{OrderStatusDelivered, OrderStatusCanceled, false},
		{OrderStatusCanceled, OrderStatusPending, false},
		{"unknown", OrderStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			o := &Order{Status: tt.from}
			assert.Equal(t, tt.want, o.CanTransitionTo(tt.to))
		})
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	transitions := AllowedTransitions()
	assert.Empty(t, transitions[OrderStatusDelivered])
	assert.Empty(t, transitions[OrderStatusCanceled])
	for _, s := range ValidStatuses() {
		_, ok := transitions[s]
		assert.True(t, ok, "missing transitions for %s", s)
	}
}

// ============================================================================
// Delivery and payment
// ============================================================================

func TestDeliveryFee(t *testing.T) {
	fee, ok := DeliveryFee(DeliveryInsideDhaka)
	assert.True(t, ok)
	assert.True(t, fee.Equal(decimal.NewFromInt(60)))

	fee, ok = DeliveryFee(DeliveryOutsideDhaka)
	assert.True(t, ok)
	assert.True(t, fee.Equal(decimal.NewFromInt(120)))

	_, ok = DeliveryFee("chittagong_express")
	assert.False(t, ok)
}

func TestIsValidPaymentMethod(t *testing.T) {
	assert.True(t, IsValidPaymentMethod(PaymentCashOnDelivery))
	assert.True(t, IsValidPaymentMethod(PaymentBkash))
	assert.False(t, IsValidPaymentMethod("visa"))
}

func TestIsValidAmount(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0", true},
		{"1500", true},
		{"1499.99", true},
		{"0.00000001", true},
		{"1000000000000", true},
		{"1000000000001", false},
		{"-1", false},
		{"0.000000001", false},
		{"1e50000000", false},
		{"1e-50000000", false},
		{"123456789012345678901234567890e-20", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidAmount(decimal.RequireFromString(tt.in)), tt.in)
	}
}

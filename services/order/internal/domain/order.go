package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Order status constants.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCanceled  = "canceled"
)

// Delivery options and payment methods accepted from the storefront.
const (
	DeliveryInsideDhaka  = "inside_dhaka"
	DeliveryOutsideDhaka = "outside_dhaka"

	PaymentCashOnDelivery = "cash_on_delivery"
	PaymentBkash          = "bkash"
)

var deliveryFees = map[string]decimal.Decimal{
	DeliveryInsideDhaka:  decimal.NewFromInt(60),
	DeliveryOutsideDhaka: decimal.NewFromInt(120),
}

// DeliveryFee returns the flat fee for a delivery option.
func DeliveryFee(option string) (decimal.Decimal, bool) {
	fee, ok := deliveryFees[option]
	return fee, ok
}

// Money figures outside these bounds are rejected at intake.
const (
	maxAmountExponent = 12
	minAmountExponent = -8
	maxAmountBits     = 96
)

// MaxAmount is the largest price or total an order may carry.
var MaxAmount = decimal.New(1, 12)

// IsValidAmount reports whether d is a non-negative amount no larger than
// MaxAmount with at most eight fractional digits. Exponent and coefficient
// size are checked first so an extreme scale is never rescaled.
func IsValidAmount(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp > maxAmountExponent || exp < minAmountExponent {
		return false
	}
	if d.Coefficient().BitLen() > maxAmountBits {
		return false
	}
	return !d.IsNegative() && d.Cmp(MaxAmount) <= 0
}

// IsValidPaymentMethod reports whether m is a supported payment method.
func IsValidPaymentMethod(m string) bool {
	return m == PaymentCashOnDelivery || m == PaymentBkash
}

// Order represents a customer order placed from the storefront.
type Order struct {
	ID             string          `json:"id"`
	Status         string          `json:"status"`
	Items          []OrderItem     `json:"items"`
	Customer       Customer        `json:"customer"`
	PaymentMethod  string          `json:"paymentMethod"`
	DeliveryOption string          `json:"deliveryOption"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Total          decimal.Decimal `json:"total"`
	Notes          string          `json:"notes,omitempty"`
	CanceledReason string          `json:"canceledReason,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Customer holds the contact and delivery details of an order.
type Customer struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode,omitempty"`
}

// ValidStatuses returns all valid order statuses.
func ValidStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCanceled,
	}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(status string) bool {
	return slices.Contains(ValidStatuses(), status)
}

// AllowedTransitions defines which status transitions are valid.
func AllowedTransitions() map[string][]string {
	return map[string][]string{
		OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCanceled},
		OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCanceled},
		OrderStatusShipped:   {OrderStatusDelivered},
		OrderStatusDelivered: {},
		OrderStatusCanceled:  {},
	}
}

// CanTransitionTo checks if the order can transition to the target status.
func (o *Order) CanTransitionTo(target string) bool {
	allowed, ok := AllowedTransitions()[o.Status]
	if !ok {
		return false
	}
	return slices.Contains(allowed, target)
}

// ItemsSubtotal sums the line totals of the order's items.
func (o *Order) ItemsSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for i := range o.Items {
		sum = sum.Add(o.Items[i].LineTotal())
	}
	return sum
}

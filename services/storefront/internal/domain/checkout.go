package domain

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperrors "github.com/sakibbengal/Bengal-Boats-sub000/pkg/errors"
	pkgvalidator "github.com/sakibbengal/Bengal-Boats-sub000/pkg/validator"
)

// DeliveryZone selects the flat delivery fee.
type DeliveryZone string

const (
	ZoneInsideDhaka  DeliveryZone = "inside_dhaka"
	ZoneOutsideDhaka DeliveryZone = "outside_dhaka"
)

var deliveryFees = map[DeliveryZone]decimal.Decimal{
	ZoneInsideDhaka:  decimal.NewFromInt(60),
	ZoneOutsideDhaka: decimal.NewFromInt(120),
}

// Fee returns the delivery fee for z.
func (z DeliveryZone) Fee() (decimal.Decimal, bool) {
	fee, ok := deliveryFees[z]
	return fee, ok
}

// PaymentMethod is how the customer pays on delivery.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentBkash          PaymentMethod = "bkash"
)

// OrderStatusPending is the status of every newly submitted order.
const OrderStatusPending = "pending"

// ErrEmptyCart is returned when checking out a cart with no lines.
var ErrEmptyCart = &apperrors.AppError{
	Code:    "EMPTY_CART",
	Message: "cart is empty",
	Status:  http.StatusBadRequest,
	Err:     apperrors.ErrInvalidInput,
}

var bdMobile = regexp.MustCompile(`^(?:\+?88)?01[3-9]\d{8}$`)

func init() {
	err := pkgvalidator.RegisterValidation("bd_mobile", func(fl validator.FieldLevel) bool {
		return bdMobile.MatchString(normalizePhone(fl.Field().String()))
	}, "must be a valid Bangladeshi mobile number")
	if err != nil {
		panic(err)
	}
}

func normalizePhone(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
}

// CheckoutInput is the customer form submitted at checkout.
type CheckoutInput struct {
	Name           string        `json:"name" validate:"required,notblank,max=120"`
	Email          string        `json:"email" validate:"required,notblank,email"`
	Phone          string        `json:"phone" validate:"required,notblank,bd_mobile"`
	Address        string        `json:"address" validate:"required,notblank,max=500"`
	City           string        `json:"city" validate:"required,notblank,max=100"`
	PostalCode     string        `json:"postalCode" validate:"omitempty,max=20"`
	DeliveryOption DeliveryZone  `json:"deliveryOption" validate:"required,oneof=inside_dhaka outside_dhaka"`
	PaymentMethod  PaymentMethod `json:"paymentMethod" validate:"omitempty,oneof=cash_on_delivery bkash"`
	Notes          string        `json:"notes" validate:"omitempty,max=1000"`
}

// CustomerForm is the validated, trimmed customer half of an order.
type CustomerForm struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode,omitempty"`
}

// OrderItem is a value copy of a cart line inside an order.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

// OrderDraft is everything the order-intake service needs to create an order.
type OrderDraft struct {
	Items         []OrderItem     `json:"items"`
	Customer      CustomerForm    `json:"customer"`
	DeliveryZone  DeliveryZone    `json:"deliveryOption"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Notes         string          `json:"notes,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DeliveryFee   decimal.Decimal `json:"deliveryFee"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
}

// OrderConfirmation is what the intake service hands back for a created order.
type OrderConfirmation struct {
	OrderID string      `json:"orderId"`
	Message string      `json:"message,omitempty"`
	Draft   *OrderDraft `json:"order"`
}

// BuildOrderDraft turns a cart snapshot and checkout form into a draft. It
// has no side effects. Field problems come back as *validator.ValidationError.
func BuildOrderDraft(snap CartSnapshot, in CheckoutInput) (*OrderDraft, error) {
	if snap.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if err := pkgvalidator.Validate(in); err != nil {
		return nil, err
	}

	fee, ok := in.DeliveryOption.Fee()
	if !ok {
		return nil, apperrors.InvalidInput("unknown delivery option")
	}

	payment := in.PaymentMethod
	if payment == "" {
		payment = PaymentCashOnDelivery
	}

	items := make([]OrderItem, len(snap.Lines))
	subtotal := decimal.Zero
	for i, l := range snap.Lines {
		items[i] = OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Image:     l.Image,
		}
		subtotal = subtotal.Add(l.LineTotal())
	}

	return &OrderDraft{
		Items: items,
		Customer: CustomerForm{
			Name:       strings.TrimSpace(in.Name),
			Email:      strings.TrimSpace(in.Email),
			Phone:      normalizePhone(in.Phone),
			Address:    strings.TrimSpace(in.Address),
			City:       strings.TrimSpace(in.City),
			PostalCode: strings.TrimSpace(in.PostalCode),
		},
		DeliveryZone:  in.DeliveryOption,
		PaymentMethod: payment,
		Notes:         strings.TrimSpace(in.Notes),
		Subtotal:      subtotal,
		DeliveryFee:   fee,
		Total:         subtotal.Add(fee),
		Status:        OrderStatusPending,
	}, nil
}

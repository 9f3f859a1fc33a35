package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgvalidator "github.com/sakibbengal/Bengal-Boats-sub000/pkg/validator"
)

func validInput(zone DeliveryZone) CheckoutInput {
	return CheckoutInput{
		Name:           "Rahim Uddin",
		Email:          "rahim@example.com",
		Phone:          "01712345678",
		Address:        "House 12, Road 5, Dhanmondi",
		City:           "Dhaka",
		DeliveryOption: zone,
	}
}

func twoLineSnapshot() CartSnapshot {
	return NewCart(boat("p1", "500", nil, 2), boat("p2", "300", nil, 1)).Snapshot()
}

func TestBuildOrderDraft_InsideDhaka(t *testing.T) {
	draft, err := BuildOrderDraft(twoLineSnapshot(), validInput(ZoneInsideDhaka))
	require.NoError(t, err)

	assert.True(t, draft.Subtotal.Equal(price("1300")))
	assert.True(t, draft.DeliveryFee.Equal(price("60")))
	assert.True(t, draft.Total.Equal(price("1360")))
	assert.Equal(t, OrderStatusPending, draft.Status)
	assert.Equal(t, PaymentCashOnDelivery, draft.PaymentMethod)
	assert.Len(t, draft.Items, 2)
}

func TestBuildOrderDraft_OutsideDhaka(t *testing.T) {
	in := validInput(ZoneOutsideDhaka)
	in.PaymentMethod = PaymentBkash

	draft, err := BuildOrderDraft(twoLineSnapshot(), in)
	require.NoError(t, err)

	assert.True(t, draft.DeliveryFee.Equal(price("120")))
	assert.True(t, draft.Total.Equal(price("1420")))
	assert.Equal(t, PaymentBkash, draft.PaymentMethod)
}

func TestBuildOrderDraft_TotalIsSubtotalPlusFee(t *testing.T) {
	snaps := []CartSnapshot{
		NewCart(boat("a", "0.01", nil, 1)).Snapshot(),
		NewCart(boat("a", "1234.56", intPtr(3), 9), boat("b", "0", nil, 4)).Snapshot(),
		twoLineSnapshot(),
	}
	for _, snap := range snaps {
		for _, zone := range []DeliveryZone{ZoneInsideDhaka, ZoneOutsideDhaka} {
			draft, err := BuildOrderDraft(snap, validInput(zone))
			require.NoError(t, err)
			fee, _ := zone.Fee()
			assert.True(t, draft.Subtotal.Equal(snap.Totals.TotalPrice))
			assert.True(t, draft.Total.Equal(draft.Subtotal.Add(fee)))
		}
	}
}

func TestBuildOrderDraft_EmptyCart(t *testing.T) {
	_, err := BuildOrderDraft(NewCart().Snapshot(), validInput(ZoneInsideDhaka))
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestBuildOrderDraft_InvalidEmail(t *testing.T) {
	in := validInput(ZoneInsideDhaka)
	in.Email = "not-an-email"

	_, err := BuildOrderDraft(twoLineSnapshot(), in)

	var verr *pkgvalidator.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("email"))
	assert.Len(t, verr.Fields(), 1)
}

func TestBuildOrderDraft_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CheckoutInput)
		field  string
	}{
		{"blank name", func(in *CheckoutInput) { in.Name = "   " }, "name"},
		{"missing address", func(in *CheckoutInput) { in.Address = "" }, "address"},
		{"blank city", func(in *CheckoutInput) { in.City = "\t" }, "city"},
		{"landline phone", func(in *CheckoutInput) { in.Phone = "029661234" }, "phone"},
		{"short mobile", func(in *CheckoutInput) { in.Phone = "0171234567" }, "phone"},
		{"unknown zone", func(in *CheckoutInput) { in.DeliveryOption = "chittagong" }, "deliveryOption"},
		{"missing zone", func(in *CheckoutInput) { in.DeliveryOption = "" }, "deliveryOption"},
		{"unknown payment", func(in *CheckoutInput) { in.PaymentMethod = "card" }, "paymentMethod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput(ZoneInsideDhaka)
			tt.mutate(&in)

			_, err := BuildOrderDraft(twoLineSnapshot(), in)
			var verr *pkgvalidator.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.True(t, verr.Has(tt.field), "fields: %v", verr.Fields())
		})
	}
}

func TestBuildOrderDraft_PhoneFormats(t *testing.T) {
	for _, phone := range []string{"01812345678", "+8801912345678", "8801512345678", "017-1234-5678", " 01312345678 "} {
		in := validInput(ZoneInsideDhaka)
		in.Phone = phone
		draft, err := BuildOrderDraft(twoLineSnapshot(), in)
		require.NoError(t, err, phone)
		assert.NotContains(t, draft.Customer.Phone, "-")
		assert.NotContains(t, draft.Customer.Phone, " ")
	}
}

func TestBuildOrderDraft_TrimsAndCopies(t *testing.T) {
	c := NewCart(boat("p1", "500", nil, 2))
	snap := c.Snapshot()

	in := validInput(ZoneInsideDhaka)
	in.Name = "  Karim  "
	in.Notes = "  call before delivery "

	draft, err := BuildOrderDraft(snap, in)
	require.NoError(t, err)

	snap.Lines[0].Quantity = 40
	assert.Equal(t, 2, draft.Items[0].Quantity)
	assert.Equal(t, "Karim", draft.Customer.Name)
	assert.Equal(t, "call before delivery", draft.Notes)
}

func TestDeliveryZoneFee(t *testing.T) {
	fee, ok := ZoneInsideDhaka.Fee()
	assert.True(t, ok)
	assert.True(t, fee.Equal(price("60")))

	_, ok = DeliveryZone("sylhet").Fee()
	assert.False(t, ok)
}

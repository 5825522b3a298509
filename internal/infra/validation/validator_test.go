package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riide/internal/app/handlers/checkout"
	"riide/internal/app/middleware"
)

func validCheckout() checkout.CheckoutCommand {
	return checkout.CheckoutCommand{
		VehicleID: 1,
		StartDate: "2026-07-03",
		EndDate:   "2026-07-05",
		Customer:  checkout.CustomerInput{Name: "Ada", Email: "ada@example.com", Phone: "0600000000"},
	}
}

func TestStructValidator_Accepts(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(context.Background(), validCheckout()))
	assert.NoError(t, v.Validate(context.Background(), checkout.ExpirePendingCommand{}))
	assert.NoError(t, v.Validate(context.Background(), "not a struct"))
}

func TestStructValidator_Rejects(t *testing.T) {
	cmd := validCheckout()
	cmd.Customer.Email = "nope"
	cmd.VehicleID = 0

	err := New().Validate(context.Background(), cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, middleware.ErrValidation)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Rule
	}
	assert.Equal(t, "email", fields["Customer.email"])
	assert.Contains(t, fields, "VehicleID")
}

func TestStructValidator_PaymentOutcome(t *testing.T) {
	err := New().Validate(context.Background(), checkout.ConfirmPaymentCommand{BookingID: "b1", PaymentRef: "cs", Outcome: "refunded"})
	assert.ErrorIs(t, err, middleware.ErrValidation)
}

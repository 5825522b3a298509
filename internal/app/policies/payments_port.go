package policies

import (
	"context"

	"riide/internal/domain/shared/money"
)

// CheckoutRequest describes one hosted payment page for a pending booking.
type CheckoutRequest struct {
	BookingID     string
	Title         string
	Description   string
	Amount        money.Money
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentsPort opens checkout sessions. Settlement arrives later as a payment event.
type PaymentsPort interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
}

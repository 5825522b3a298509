package checkout

import (
	"context"
	"errors"
	"log/slog"

	"riide/internal/app/commands"
	"riide/internal/app/handlers/support"
	"riide/internal/app/outbox"
	"riide/internal/app/policies"
	domainbooking "riide/internal/domain/booking"
)

const confirmPaymentKey = "checkout.confirm_payment"

type PaymentOutcome string

const (
	PaymentSucceeded PaymentOutcome = "succeeded"
	PaymentFailed    PaymentOutcome = "failed"
	PaymentExpired   PaymentOutcome = "expired"
)

var ErrUnknownOutcome = errors.New("checkout: unknown payment outcome")

// ConfirmPaymentCommand settles a pending booking from a payment provider event.
type ConfirmPaymentCommand struct {
	BookingID  string         `validate:"required"`
	PaymentRef string         `validate:"required"`
	Outcome    PaymentOutcome `validate:"required,oneof=succeeded failed expired"`
}

func (c ConfirmPaymentCommand) Key() string { return confirmPaymentKey }

type ConfirmPaymentResult struct {
	BookingID string `json:"bookingId"`
	Status    string `json:"status"`
}

type ConfirmPaymentHandler struct {
	Clock    policies.Clock
	Notifier policies.Notifier
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Logger   *slog.Logger
}

func (h *ConfirmPaymentHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*ConfirmPaymentResult, error) {
	unit, err := support.UnitFromContext(ctx)
	if err != nil {
		return nil, err
	}
	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	now := h.Clock.Now()
	switch cmd.Outcome {
	case PaymentSucceeded:
		err = b.Confirm(cmd.PaymentRef, now)
	case PaymentFailed, PaymentExpired:
		if b.Status == domainbooking.StatusCancelled {
			return &ConfirmPaymentResult{BookingID: string(b.ID), Status: string(b.Status)}, nil
		}
		err = b.Cancel("payment "+string(cmd.Outcome), now)
	default:
		err = ErrUnknownOutcome
	}
	if err != nil {
		return nil, err
	}

	evs := b.PullEvents()
	if len(evs) == 0 {
		// Redelivered confirmation: nothing changed.
		return &ConfirmPaymentResult{BookingID: string(b.ID), Status: string(b.Status)}, nil
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
		return nil, err
	}
	if b.Status == domainbooking.StatusConfirmed {
		notifyConfirmed(ctx, h.Notifier, h.logger(), b)
	}
	h.logger().InfoContext(ctx, "payment settled", "booking_id", b.ID, "outcome", cmd.Outcome, "status", b.Status)
	return &ConfirmPaymentResult{BookingID: string(b.ID), Status: string(b.Status)}, nil
}

func (h *ConfirmPaymentHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ commands.Handler[ConfirmPaymentCommand, *ConfirmPaymentResult] = (*ConfirmPaymentHandler)(nil)

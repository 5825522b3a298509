package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"

	"riide/internal/app/commands"
	"riide/internal/app/handlers/checkout"
	"riide/internal/app/middleware"
	domainbooking "riide/internal/domain/booking"
)

// Inbox deduplicates consumed events. Release forgets an event whose processing failed
// so a redelivery is handled again.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

// PaymentEvent is the CloudEvent envelope emitted by the payment service. The outcome is
// carried by the type: payment.succeeded.v1, payment.failed.v1 or payment.expired.v1.
type PaymentEvent struct {
	ID   string           `json:"id"`
	Type string           `json:"type"`
	Data PaymentEventData `json:"data"`
}

type PaymentEventData struct {
	BookingID string `json:"bookingId"`
	SessionID string `json:"sessionId"`
}

func (e PaymentEvent) Outcome() (checkout.PaymentOutcome, error) {
	name := strings.TrimSuffix(strings.TrimPrefix(e.Type, "payment."), ".v1")
	switch outcome := checkout.PaymentOutcome(name); outcome {
	case checkout.PaymentSucceeded, checkout.PaymentFailed, checkout.PaymentExpired:
		return outcome, nil
	}
	return "", fmt.Errorf("%w: %q", checkout.ErrUnknownOutcome, e.Type)
}

// PaymentEventHandler turns payment events into ConfirmPayment commands.
type PaymentEventHandler struct {
	Bus    commands.Bus
	Inbox  Inbox
	Logger *slog.Logger
}

func (h *PaymentEventHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt PaymentEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return fmt.Errorf("%w: decode payment event: %v", ErrPermanent, err)
	}
	if evt.ID == "" {
		return fmt.Errorf("%w: payment event without id", ErrPermanent)
	}
	outcome, err := evt.Outcome()
	if err != nil {
		h.logger().DebugContext(ctx, "ignoring payment event", "event_id", evt.ID, "type", evt.Type)
		return nil
	}

	if h.Inbox != nil {
		seen, err := h.Inbox.Seen(ctx, evt.ID)
		if err != nil {
			return err
		}
		if seen {
			h.logger().DebugContext(ctx, "duplicate payment event", "event_id", evt.ID)
			return nil
		}
	}

	cmd := checkout.ConfirmPaymentCommand{BookingID: evt.Data.BookingID, PaymentRef: evt.Data.SessionID, Outcome: outcome}
	_, err = h.Bus.Dispatch(ctx, cmd)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, middleware.ErrValidation):
		if outcome == checkout.PaymentSucceeded {
			// Money was taken but no booking can hold it; needs manual reconciliation.
			h.logger().ErrorContext(ctx, "payment received for booking that cannot be confirmed",
				"event_id", evt.ID, "booking_id", evt.Data.BookingID, "session_id", evt.Data.SessionID, "error", err)
		}
		return fmt.Errorf("%w: event %s: %v", ErrPermanent, evt.ID, err)
	}
	if h.Inbox != nil {
		if relErr := h.Inbox.Release(ctx, evt.ID); relErr != nil {
			return errors.Join(err, relErr)
		}
	}
	return err
}

func (h *PaymentEventHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

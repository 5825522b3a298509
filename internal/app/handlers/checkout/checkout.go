package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"riide/internal/app/commands"
	"riide/internal/app/handlers/support"
	"riide/internal/app/outbox"
	"riide/internal/app/policies"
	domainbooking "riide/internal/domain/booking"
	"riide/internal/domain/fleet"
	"riide/internal/domain/pricing"
	"riide/internal/domain/shared/daterange"
	"riide/internal/domain/shared/money"
)

const (
	checkoutKey = "checkout.checkout"

	// SimulatedPaymentRef marks bookings confirmed without a payment provider.
	SimulatedPaymentRef = "simulated"
)

type CustomerInput struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,max=40"`
}

type CheckoutCommand struct {
	VehicleID       int             `validate:"required,gt=0"`
	StartDate       string          `validate:"required"`
	EndDate         string          `validate:"required"`
	Customer        CustomerInput   `validate:"required"`
	Notes           string          `validate:"max=2000"`
	ClaimedEstimate json.RawMessage `validate:"-"`
	IdempotencyKeyV string          `validate:"-"`
}

func (c CheckoutCommand) Key() string { return checkoutKey }

func (c CheckoutCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CheckoutCommand) ResultPrototype() any { return &CheckoutResult{} }

type CheckoutResult struct {
	URL                   string           `json:"url"`
	PricingEstimateServer pricing.Estimate `json:"pricingEstimateServer"`
	BookingID             string           `json:"bookingId"`
}

type CheckoutHandler struct {
	Catalog    fleet.Repository
	Calculator pricing.Calculator
	Clock      policies.Clock
	// Payments is nil in simulation mode: bookings are confirmed on the spot.
	Payments    policies.PaymentsPort
	Notifier    policies.Notifier
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	BaseURL     string
	IDGenerator func() string
	Logger      *slog.Logger
}

func (h *CheckoutHandler) Handle(ctx context.Context, cmd CheckoutCommand) (*CheckoutResult, error) {
	unit, err := support.UnitFromContext(ctx)
	if err != nil {
		return nil, err
	}
	start, err := daterange.ParseDate(cmd.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := daterange.ParseDate(cmd.EndDate)
	if err != nil {
		return nil, err
	}
	vehicle, err := h.Catalog.ByID(ctx, fleet.VehicleID(cmd.VehicleID))
	if err != nil {
		return nil, err
	}
	today := h.Clock.Today()
	dr := daterange.DateRange{Start: start, End: end}
	if err := domainbooking.ValidateRequestedRange(dr, today); err != nil {
		return nil, err
	}

	confirmed, err := unit.Bookings().List(ctx, domainbooking.Filter{
		VehicleID: vehicle.ID,
		Status:    domainbooking.StatusConfirmed,
	})
	if err != nil {
		return nil, err
	}
	server := h.Calculator.Estimate(pricing.EstimateInput{
		Start:        start,
		End:          end,
		Vehicle:      vehicle,
		Reservations: domainbooking.Reservations(confirmed),
		AsOf:         today,
	})
	if !pricing.Consistent(pricing.DecodeClaimed(cmd.ClaimedEstimate), &server) {
		h.logger().InfoContext(ctx, "checkout estimate mismatch",
			"vehicle_id", vehicle.ID, "start", start.String(), "end", end.String(), "final_price", server.FinalPrice)
		return nil, &EstimateMismatchError{Server: server}
	}

	now := h.Clock.Now()
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:      domainbooking.BookingID(h.newID()),
		Vehicle: vehicle,
		Customer: domainbooking.Customer{
			Name:  cmd.Customer.Name,
			Email: cmd.Customer.Email,
			Phone: cmd.Customer.Phone,
		},
		Range:     dr,
		Total:     money.Euros(int64(server.FinalPrice)),
		Notes:     cmd.Notes,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	redirect := h.pageURL("success", b.ID)
	if h.Payments != nil {
		session, err := h.Payments.CreateCheckoutSession(ctx, policies.CheckoutRequest{
			BookingID:     string(b.ID),
			Title:         "Location " + vehicle.Name,
			Description:   fmt.Sprintf("%s → %s", start, end),
			Amount:        b.Total,
			CustomerEmail: b.Customer.Email,
			SuccessURL:    redirect,
			CancelURL:     h.pageURL("cancel", b.ID),
			Metadata: map[string]string{
				"bookingId":    string(b.ID),
				"vehicleId":    strconv.Itoa(int(vehicle.ID)),
				"startDate":    start.String(),
				"endDate":      end.String(),
				"customerName": b.Customer.Name,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPaymentsFailed, err)
		}
		b.PaymentRef = session.ID
		redirect = session.URL
	} else if err := b.Confirm(SimulatedPaymentRef, now); err != nil {
		return nil, err
	}

	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, b.PullEvents()); err != nil {
		return nil, err
	}
	if b.Status == domainbooking.StatusConfirmed {
		notifyConfirmed(ctx, h.Notifier, h.logger(), b)
	}
	h.logger().InfoContext(ctx, "checkout accepted",
		"booking_id", b.ID, "vehicle_id", vehicle.ID, "status", b.Status, "total", b.Total.String())

	return &CheckoutResult{URL: redirect, PricingEstimateServer: server, BookingID: string(b.ID)}, nil
}

func (h *CheckoutHandler) pageURL(page string, id domainbooking.BookingID) string {
	base := strings.TrimRight(h.BaseURL, "/")
	return base + "/" + page + "?bookingId=" + url.QueryEscape(string(id))
}

func (h *CheckoutHandler) newID() string {
	if h.IDGenerator != nil {
		return h.IDGenerator()
	}
	return uuid.NewString()
}

func (h *CheckoutHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ commands.Handler[CheckoutCommand, *CheckoutResult] = (*CheckoutHandler)(nil)
var _ commands.Idempotent = CheckoutCommand{}

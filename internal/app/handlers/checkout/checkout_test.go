package checkout_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riide/internal/app/commands"
	"riide/internal/app/handlers/checkout"
	"riide/internal/app/middleware"
	"riide/internal/app/outbox"
	"riide/internal/app/policies"
	domainbooking "riide/internal/domain/booking"
	"riide/internal/domain/fleet"
	"riide/internal/domain/pricing"
	"riide/internal/domain/shared/daterange"
	infracatalog "riide/internal/infra/catalog"
	"riide/internal/infra/storage/memory"
)

type movableClock struct {
	mu sync.Mutex
	at time.Time
}

func (c *movableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *movableClock) Today() daterange.Date {
	return daterange.Today(c.Now(), time.UTC)
}

func (c *movableClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(d)
}

type sentNotification struct {
	to, template string
	data         any
}

type recordingNotifier struct {
	sent []sentNotification
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, to, template string, data any) error {
	n.sent = append(n.sent, sentNotification{to: to, template: template, data: data})
	return n.err
}

type fakePayments struct {
	requests []policies.CheckoutRequest
	err      error
}

func (p *fakePayments) CreateCheckoutSession(_ context.Context, req policies.CheckoutRequest) (policies.CheckoutSession, error) {
	if p.err != nil {
		return policies.CheckoutSession{}, p.err
	}
	p.requests = append(p.requests, req)
	return policies.CheckoutSession{ID: "cs_1", URL: "https://pay.riide.fr/checkout/cs_1"}, nil
}

type fixture struct {
	bus      commands.Bus
	repo     *memory.BookingRepository
	box      *memory.Outbox
	clock    *movableClock
	notifier *recordingNotifier
	payments *fakePayments
	calc     pricing.Calculator
	fleet    *fleet.Catalog
}

func newFixture(t *testing.T, withPayments bool) *fixture {
	t.Helper()
	cat, err := infracatalog.Default()
	require.NoError(t, err)

	f := &fixture{
		repo:     memory.NewBookingRepository(),
		box:      memory.NewOutbox(),
		clock:    &movableClock{at: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)},
		notifier: &recordingNotifier{},
		calc:     pricing.NewCalculator(cat.Calendar),
		fleet:    cat.Fleet,
	}
	ids := 0
	handler := &checkout.CheckoutHandler{
		Catalog:    cat.Fleet,
		Calculator: f.calc,
		Clock:      f.clock,
		Notifier:   f.notifier,
		Outbox:     f.box,
		Encoder:    outbox.JSONEventEncoder{},
		BaseURL:    "https://riide.fr/",
		IDGenerator: func() string {
			ids++
			return []string{"b1", "b2", "b3", "b4"}[ids-1]
		},
	}
	if withPayments {
		f.payments = &fakePayments{}
		handler.Payments = f.payments
	}

	base := commands.NewInMemoryBus()
	commands.RegisterHandler[checkout.CheckoutCommand, *checkout.CheckoutResult](base, handler)
	commands.RegisterHandler[checkout.ConfirmPaymentCommand, *checkout.ConfirmPaymentResult](base, &checkout.ConfirmPaymentHandler{
		Clock: f.clock, Notifier: f.notifier, Outbox: f.box, Encoder: outbox.JSONEventEncoder{},
	})
	commands.RegisterHandler[checkout.ExpirePendingCommand, *checkout.ExpirePendingResult](base, &checkout.ExpirePendingHandler{
		Clock: f.clock, TTL: 30 * time.Minute, Outbox: f.box, Encoder: outbox.JSONEventEncoder{},
	})
	f.bus = middleware.ChainCommands(base,
		middleware.Idempotency(memory.NewIdempotencyStore(), nil, time.Hour),
		middleware.OutboxFlush(f.box),
		middleware.Transaction(memory.Factory{Bookings: f.repo}, nil),
	)
	return f
}

func (f *fixture) claimed(t *testing.T, vehicleID int, start, end string) json.RawMessage {
	t.Helper()
	v, err := f.fleet.ByID(context.Background(), fleet.VehicleID(vehicleID))
	require.NoError(t, err)
	est := f.calc.Estimate(pricing.EstimateInput{
		Start:   daterange.MustParse(start),
		End:     daterange.MustParse(end),
		Vehicle: v,
		AsOf:    f.clock.Today(),
	})
	raw, err := json.Marshal(est)
	require.NoError(t, err)
	return raw
}

func (f *fixture) command(t *testing.T) checkout.CheckoutCommand {
	return checkout.CheckoutCommand{
		VehicleID:       1,
		StartDate:       "2026-07-03",
		EndDate:         "2026-07-05",
		Customer:        checkout.CustomerInput{Name: "Ada Lovelace", Email: "Ada@Example.com", Phone: "0600000000"},
		Notes:           "arrivée tardive",
		ClaimedEstimate: f.claimed(t, 1, "2026-07-03", "2026-07-05"),
	}
}

func eventNames(box *memory.Outbox) []string {
	var names []string
	for _, m := range box.Messages() {
		names = append(names, m.Name)
	}
	return names
}

func TestCheckout_SimulationConfirmsImmediately(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	res, err := commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](ctx, f.bus, f.command(t))
	require.NoError(t, err)
	assert.Equal(t, "b1", res.BookingID)
	assert.Equal(t, "https://riide.fr/success?bookingId=b1", res.URL)
	assert.Len(t, res.PricingEstimateServer.DailyBreakdown, 3)

	stored, err := f.repo.ByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, stored.Status)
	assert.Equal(t, checkout.SimulatedPaymentRef, stored.PaymentRef)
	assert.Equal(t, "ada@example.com", stored.Customer.Email)
	assert.Equal(t, int64(res.PricingEstimateServer.FinalPrice), stored.Total.Amount)

	assert.ElementsMatch(t, []string{"booking.requested", "booking.confirmed"}, eventNames(f.box))
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, policies.TemplateBookingConfirmed, f.notifier.sent[0].template)
}

func TestCheckout_NotifierFailureDoesNotFailCheckout(t *testing.T) {
	f := newFixture(t, false)
	f.notifier.err = errors.New("smtp down")
	_, err := commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](context.Background(), f.bus, f.command(t))
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.Len())
}

func TestCheckout_EstimateMismatch(t *testing.T) {
	f := newFixture(t, false)
	cmd := f.command(t)

	var claimed pricing.Estimate
	require.NoError(t, json.Unmarshal(cmd.ClaimedEstimate, &claimed))
	claimed.FinalPrice -= 5
	cmd.ClaimedEstimate, _ = json.Marshal(claimed)

	_, err := commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](context.Background(), f.bus, cmd)
	require.ErrorIs(t, err, checkout.ErrEstimateMismatch)
	var mismatch *checkout.EstimateMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, claimed.FinalPrice+5, mismatch.Server.FinalPrice)
	assert.Zero(t, f.repo.Len())
	assert.Empty(t, f.box.Messages())
}

func TestCheckout_MissingEstimateIsMismatch(t *testing.T) {
	f := newFixture(t, false)
	cmd := f.command(t)
	cmd.ClaimedEstimate = nil
	_, err := commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](context.Background(), f.bus, cmd)
	assert.ErrorIs(t, err, checkout.ErrEstimateMismatch)
}

func TestCheckout_ConfirmedBookingsRaiseOccupancy(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	first := f.command(t)
	first.StartDate, first.EndDate = "2026-06-05", "2026-06-20"
	first.ClaimedEstimate = f.claimed(t, 1, "2026-06-05", "2026-06-20")
	_, err := commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](ctx, f.bus, first)
	require.NoError(t, err)

	// the quote computed without reservations is now stale
	_, err = commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](ctx, f.bus, f.command(t))
	var mismatch *checkout.EstimateMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 1.1, mismatch.Server.OccupancyFactor)
}

func TestCheckout_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown vehicle", func(t *testing.T) {
		f := newFixture(t, false)
		cmd := f.command(t)
		cmd.VehicleID = 99
		_, err := commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](ctx, f.bus, cmd)
		assert.ErrorIs(t, err, fleet.ErrVehicleNotFound)
	})

	t.Run("start in the past", func(t *testing.T) {
		f := newFixture(t, false)
		cmd := f.command(t)
		cmd.StartDate = "2026-05-30"
		_, err := commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](ctx, f.bus, cmd)
		assert.ErrorIs(t, err, domainbooking.ErrStartInPast)
	})

	t.Run("inverted range", func(t *testing.T) {
		f := newFixture(t, false)
		cmd := f.command(t)
		cmd.StartDate, cmd.EndDate = "2026-07-05", "2026-07-03"
		_, err := commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](ctx, f.bus, cmd)
		assert.ErrorIs(t, err, daterange.ErrInvalidRange)
	})

	t.Run("longer than a year", func(t *testing.T) {
		f := newFixture(t, false)
		cmd := f.command(t)
		cmd.StartDate, cmd.EndDate = "2026-06-10", "2226-06-10"
		_, err := commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](ctx, f.bus, cmd)
		assert.ErrorIs(t, err, domainbooking.ErrRangeTooLong)
		assert.Equal(t, 0, f.repo.Len())
	})

	t.Run("malformed date", func(t *testing.T) {
		f := newFixture(t, false)
		cmd := f.command(t)
		cmd.EndDate = "demain"
		_, err := commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](ctx, f.bus, cmd)
		assert.ErrorIs(t, err, daterange.ErrInvalidDate)
	})

	t.Run("invalid customer", func(t *testing.T) {
		f := newFixture(t, false)
		cmd := f.command(t)
		cmd.Customer.Email = "not-an-email"
		_, err := commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](ctx, f.bus, cmd)
		assert.ErrorIs(t, err, domainbooking.ErrInvalidCustomer)
	})
}

func TestCheckout_IdempotentReplay(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	cmd := f.command(t)
	cmd.IdempotencyKeyV = "req-1"

	first, err := commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](ctx, f.bus, cmd)
	require.NoError(t, err)
	second, err := commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](ctx, f.bus, cmd)
	require.NoError(t, err)
	assert.Equal(t, first.BookingID, second.BookingID)
	assert.Equal(t, 1, f.repo.Len())
}

func TestCheckout_WithPayments(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	res, err := commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](ctx, f.bus, f.command(t))
	require.NoError(t, err)
	assert.Equal(t, "https://pay.riide.fr/checkout/cs_1", res.URL)

	require.Len(t, f.payments.requests, 1)
	req := f.payments.requests[0]
	assert.Equal(t, "Location Peugeot 208 GT Auto", req.Title)
	assert.Equal(t, "https://riide.fr/success?bookingId=b1", req.SuccessURL)
	assert.Equal(t, "https://riide.fr/cancel?bookingId=b1", req.CancelURL)
	assert.Equal(t, "b1", req.Metadata["bookingId"])
	assert.Equal(t, int64(res.PricingEstimateServer.FinalPrice), req.Amount.Amount)

	stored, err := f.repo.ByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPending, stored.Status)
	assert.Equal(t, "cs_1", stored.PaymentRef)
	assert.Empty(t, f.notifier.sent)

	confirm := checkout.ConfirmPaymentCommand{BookingID: "b1", PaymentRef: "cs_1", Outcome: checkout.PaymentSucceeded}
	out, err := commands.Dispatch[checkout.ConfirmPaymentCommand, *checkout.ConfirmPaymentResult](ctx, f.bus, confirm)
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", out.Status)
	assert.Len(t, f.notifier.sent, 1)

	// redelivery
	out, err = commands.Dispatch[checkout.ConfirmPaymentCommand, *checkout.ConfirmPaymentResult](ctx, f.bus, confirm)
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", out.Status)
	assert.Len(t, f.notifier.sent, 1)
	assert.ElementsMatch(t, []string{"booking.requested", "booking.confirmed"}, eventNames(f.box))
}

func TestCheckout_PaymentsFailure(t *testing.T) {
	f := newFixture(t, true)
	f.payments.err = errors.New("broker down")
	_, err := commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](context.Background(), f.bus, f.command(t))
	assert.ErrorIs(t, err, checkout.ErrPaymentsFailed)
	assert.Zero(t, f.repo.Len())
}

func TestConfirmPayment_FailedOutcomeCancels(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](ctx, f.bus, f.command(t))
	require.NoError(t, err)

	cmd := checkout.ConfirmPaymentCommand{BookingID: "b1", PaymentRef: "cs_1", Outcome: checkout.PaymentFailed}
	out, err := commands.Dispatch[checkout.ConfirmPaymentCommand, *checkout.ConfirmPaymentResult](ctx, f.bus, cmd)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", out.Status)

	out, err = commands.Dispatch[checkout.ConfirmPaymentCommand, *checkout.ConfirmPaymentResult](ctx, f.bus, cmd)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", out.Status)

	_, err = commands.Dispatch[checkout.ConfirmPaymentCommand, *checkout.ConfirmPaymentResult](ctx, f.bus,
		checkout.ConfirmPaymentCommand{BookingID: "nope", PaymentRef: "cs", Outcome: checkout.PaymentSucceeded})
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestExpirePending(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := commands.Dispatch[checkout.CheckoutCommand, *checkout.CheckoutResult](ctx, f.bus, f.command(t))
	require.NoError(t, err)

	res, err := commands.Dispatch[checkout.ExpirePendingCommand, *checkout.ExpirePendingResult](ctx, f.bus, checkout.ExpirePendingCommand{})
	require.NoError(t, err)
	assert.Empty(t, res.Cancelled)

	f.clock.Advance(31 * time.Minute)
	res, err = commands.Dispatch[checkout.ExpirePendingCommand, *checkout.ExpirePendingResult](ctx, f.bus, checkout.ExpirePendingCommand{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, res.Cancelled)

	stored, err := f.repo.ByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCancelled, stored.Status)
}

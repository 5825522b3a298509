package payments

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"riide/internal/app/policies"
	infraoutbox "riide/internal/infra/outbox"
)

const CheckoutRequestedType = "payment.checkout_requested.v1"

var ErrGatewayNotConfigured = errors.New("payments: gateway missing producer, topic or checkout url")

// Gateway opens hosted checkout sessions by publishing a request to the payment service.
// The session page lives at CheckoutURL/<session id>; the outcome comes back as a
// payment event.
type Gateway struct {
	Producer    infraoutbox.Producer
	Topic       string
	CheckoutURL string
	Source      string
	IDGenerator func() string
	Now         func() time.Time
}

type checkoutRequested struct {
	SessionID     string            `json:"sessionId"`
	BookingID     string            `json:"bookingId"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	UnitAmount    int64             `json:"unitAmount"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customerEmail"`
	SuccessURL    string            `json:"successUrl"`
	CancelURL     string            `json:"cancelUrl"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, req policies.CheckoutRequest) (policies.CheckoutSession, error) {
	if g.Producer == nil || g.Topic == "" || g.CheckoutURL == "" {
		return policies.CheckoutSession{}, ErrGatewayNotConfigured
	}
	amount, err := req.Amount.Minor()
	if err != nil {
		return policies.CheckoutSession{}, err
	}
	sessionID := "cs_" + g.newID()
	data := checkoutRequested{
		SessionID:     sessionID,
		BookingID:     req.BookingID,
		Title:         req.Title,
		Description:   req.Description,
		UnitAmount:    amount,
		Currency:      strings.ToLower(req.Amount.Currency),
		CustomerEmail: req.CustomerEmail,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
		Metadata:      req.Metadata,
	}
	eventID := g.newID()
	payload, err := json.Marshal(map[string]any{
		"specversion":     "1.0",
		"id":              eventID,
		"type":            CheckoutRequestedType,
		"source":          g.source(),
		"subject":         req.BookingID,
		"time":            g.now().UTC().Format(time.RFC3339Nano),
		"datacontenttype": "application/json",
		"data":            data,
	})
	if err != nil {
		return policies.CheckoutSession{}, err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
		"ce_id":        eventID,
		"ce_type":      CheckoutRequestedType,
	}
	if err := g.Producer.Publish(ctx, g.Topic, req.BookingID, payload, headers); err != nil {
		return policies.CheckoutSession{}, err
	}
	return policies.CheckoutSession{
		ID:  sessionID,
		URL: strings.TrimRight(g.CheckoutURL, "/") + "/" + sessionID,
	}, nil
}

func (g *Gateway) newID() string {
	if g.IDGenerator != nil {
		return g.IDGenerator()
	}
	return uuid.NewString()
}

func (g *Gateway) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *Gateway) source() string {
	if g.Source != "" {
		return g.Source
	}
	return "app://riide"
}

var _ policies.PaymentsPort = (*Gateway)(nil)

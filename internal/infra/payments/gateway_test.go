package payments

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riide/internal/app/policies"
	"riide/internal/domain/shared/money"
)

type capturedMessage struct {
	topic, key string
	payload    []byte
	headers    map[string]string
}

type captureProducer struct {
	msgs []capturedMessage
	err  error
}

func (p *captureProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, capturedMessage{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func TestGateway_CreateCheckoutSession(t *testing.T) {
	producer := &captureProducer{}
	ids := []string{"sess", "evt"}
	g := &Gateway{
		Producer:    producer,
		Topic:       "payments.checkout_requests.v1",
		CheckoutURL: "https://pay.riide.fr/checkout/",
		IDGenerator: func() string { id := ids[0]; ids = ids[1:]; return id },
		Now:         func() time.Time { return time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC) },
	}

	session, err := g.CreateCheckoutSession(context.Background(), policies.CheckoutRequest{
		BookingID:     "b1",
		Title:         "Location Peugeot 208",
		Amount:        money.Euros(143),
		CustomerEmail: "ada@example.com",
		SuccessURL:    "https://riide.fr/success?bookingId=b1",
		CancelURL:     "https://riide.fr/cancel?bookingId=b1",
		Metadata:      map[string]string{"bookingId": "b1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_sess", session.ID)
	assert.Equal(t, "https://pay.riide.fr/checkout/cs_sess", session.URL)

	require.Len(t, producer.msgs, 1)
	msg := producer.msgs[0]
	assert.Equal(t, "payments.checkout_requests.v1", msg.topic)
	assert.Equal(t, "b1", msg.key)
	assert.Equal(t, "evt", msg.headers["ce_id"])

	var evt struct {
		Type string            `json:"type"`
		Time string            `json:"time"`
		Data checkoutRequested `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.payload, &evt))
	assert.Equal(t, CheckoutRequestedType, evt.Type)
	assert.Equal(t, "2026-07-01T08:00:00Z", evt.Time)
	assert.Equal(t, int64(14300), evt.Data.UnitAmount)
	assert.Equal(t, "eur", evt.Data.Currency)
	assert.Equal(t, "cs_sess", evt.Data.SessionID)
}

func TestGateway_Failures(t *testing.T) {
	_, err := (&Gateway{}).CreateCheckoutSession(context.Background(), policies.CheckoutRequest{})
	assert.ErrorIs(t, err, ErrGatewayNotConfigured)

	broken := errors.New("broker down")
	g := &Gateway{Producer: &captureProducer{err: broken}, Topic: "t", CheckoutURL: "https://pay"}
	_, err = g.CreateCheckoutSession(context.Background(), policies.CheckoutRequest{BookingID: "b1", Amount: money.Euros(10)})
	assert.ErrorIs(t, err, broken)

	g.Producer = &captureProducer{}
	_, err = g.CreateCheckoutSession(context.Background(), policies.CheckoutRequest{BookingID: "b1", Amount: money.Euros(-1)})
	assert.ErrorIs(t, err, money.ErrNegativeAmount)
}

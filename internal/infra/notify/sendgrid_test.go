package notify

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riide/internal/app/policies"
)

type fakeSender struct {
	status int
	sent   []*mail.SGMailV3
}

func (f *fakeSender) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	return &rest.Response{StatusCode: f.status, Body: "nope"}, nil
}

var confirmation = policies.BookingConfirmedEmail{
	BookingID:    "b1",
	CustomerName: "Ada <script>",
	VehicleName:  "Peugeot 208",
	StartDate:    "2026-07-03",
	EndDate:      "2026-07-05",
	TotalEUR:     143,
}

func TestSendGridNotifier_Send(t *testing.T) {
	sender := &fakeSender{status: 202}
	n := NewSendGridNotifierWith(sender, "reservations@riide.fr", "Riide")

	require.NoError(t, n.Send(context.Background(), "ada@example.com", policies.TemplateBookingConfirmed, confirmation))
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "reservations@riide.fr", msg.From.Address)
	assert.Equal(t, "Votre réservation est confirmée", msg.Subject)
	assert.Equal(t, "ada@example.com", msg.Personalizations[0].To[0].Address)

	var html string
	for _, c := range msg.Content {
		if c.Type == "text/html" {
			html = c.Value
		}
	}
	assert.Contains(t, html, "Peugeot 208")
	assert.Contains(t, html, "143 €")
	assert.Contains(t, html, "Ada &lt;script&gt;")
}

func TestSendGridNotifier_Errors(t *testing.T) {
	n := NewSendGridNotifierWith(&fakeSender{status: 401}, "reservations@riide.fr", "Riide")
	err := n.Send(context.Background(), "ada@example.com", policies.TemplateBookingConfirmed, confirmation)
	assert.ErrorContains(t, err, "status 401")

	err = n.Send(context.Background(), "ada@example.com", "welcome", nil)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := LogNotifier{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	require.NoError(t, n.Send(context.Background(), "ada@example.com", policies.TemplateBookingConfirmed, confirmation))
	assert.Contains(t, buf.String(), "ada@example.com")
}

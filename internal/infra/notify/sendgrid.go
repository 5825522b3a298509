package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"riide/internal/app/policies"
)

var ErrUnknownTemplate = errors.New("notify: unknown template")

// Sender is the part of the SendGrid client the notifier uses.
type Sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type emailTemplate struct {
	subject string
	html    *template.Template
}

var templates = map[string]emailTemplate{
	policies.TemplateBookingConfirmed: {
		subject: "Votre réservation est confirmée",
		html: template.Must(template.New(policies.TemplateBookingConfirmed).Parse(
			`<h1>Merci {{.CustomerName}} !</h1>
<p>Votre location <strong>{{.VehicleName}}</strong> du {{.StartDate}} au {{.EndDate}} est confirmée.</p>
<p>Montant réglé : {{.TotalEUR}} €</p>
<p>Référence : {{.BookingID}}</p>`)),
	},
}

// SendGridNotifier renders the built-in templates and delivers them through SendGrid.
type SendGridNotifier struct {
	client Sender
	from   *mail.Email
}

func NewSendGridNotifier(apiKey, fromEmail, fromName string) *SendGridNotifier {
	return NewSendGridNotifierWith(sendgrid.NewSendClient(apiKey), fromEmail, fromName)
}

func NewSendGridNotifierWith(client Sender, fromEmail, fromName string) *SendGridNotifier {
	return &SendGridNotifier{client: client, from: mail.NewEmail(fromName, fromEmail)}
}

func (n *SendGridNotifier) Send(ctx context.Context, to string, templateName string, data any) error {
	subject, html, err := render(templateName, data)
	if err != nil {
		return err
	}
	message := mail.NewSingleEmail(n.from, subject, mail.NewEmail("", to), "", html)
	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("notify: send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("notify: sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func render(name string, data any) (string, string, error) {
	tpl, ok := templates[name]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	var buf bytes.Buffer
	if err := tpl.html.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return tpl.subject, buf.String(), nil
}

// LogNotifier writes notifications to the log instead of sending them; used when no
// SendGrid key is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Send(ctx context.Context, to string, templateName string, data any) error {
	subject, _, err := render(templateName, data)
	if err != nil {
		return err
	}
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification (not sent)", "to", to, "template", templateName, "subject", subject)
	return nil
}

var (
	_ policies.Notifier = (*SendGridNotifier)(nil)
	_ policies.Notifier = LogNotifier{}
)

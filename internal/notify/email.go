package notify

import (
	"context"

	"stockwatch/internal/mailer"
	"stockwatch/internal/model"
)

// EmailChannel delivers events over SMTP.
type EmailChannel struct {
	mailer *mailer.Mailer
}

func NewEmailChannel(m *mailer.Mailer) *EmailChannel {
	return &EmailChannel{mailer: m}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Recipients(t model.Target, st model.StockState) []string {
	switch st {
	case model.StateOutOfStock:
		return t.EmailsOnOutOfStock
	case model.StateInStock:
		return t.EmailsOnInStock
	default:
		return nil
	}
}

func (c *EmailChannel) Send(ctx context.Context, ev Event, recipients []string) error {
	return c.mailer.Send(Subject(ev), Body(ev), recipients)
}

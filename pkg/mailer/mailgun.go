package mailer

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun wraps Mailgun client configuration.
type Mailgun struct {
	Domain string
	APIKey string
	Sender string
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Domain: domain, APIKey: apiKey, Sender: sender}
}

// Send delivers one rendered message. html is optional.
func (m *Mailgun) Send(ctx context.Context, from string, to []string, subject, text, html string) error {
	if len(to) == 0 {
		return errors.New("mailgun: no recipients")
	}
	if from == "" {
		from = m.Sender
	}
	client := mg.NewMailgun(m.Domain, m.APIKey)
	msg := client.NewMessage(from, subject, text, to...)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := client.Send(c, msg)
	return err
}

// Package email delivers outbound transactional mail. Delivery is an external
// collaborator: callers depend on the Sender interface only.
package email

import (
	"context"

	"github.com/resend/resend-go/v2"
)

// Sender sends a single HTML email.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// ResendSender delivers mail through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender builds a Resend-backed sender.
func NewResendSender(apiKey, from string) *ResendSender {
	if from == "" {
		from = "OdontoX <no-reply@odontox.io>"
	}
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

func (s *ResendSender) Send(ctx context.Context, to, subject, html string) error {
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	return err
}

// NoopSender drops mail; used when no delivery API key is configured.
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, to, subject, html string) error {
	return nil
}

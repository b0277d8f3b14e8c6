package mail

import (
	"context"

	"github.com/resendlabs/resend-go"
	"github.com/tech-arch1tect/storefront/config"
)

// ResendSender delivers through the Resend transactional email API.
type ResendSender struct {
	send func(params *resend.SendEmailRequest) error
	from string
}

func NewResendSender(cfg *config.MailConfig) *ResendSender {
	client := resend.NewClient(cfg.ResendKey)

	return &ResendSender{
		send: func(params *resend.SendEmailRequest) error {
			_, err := client.Emails.Send(params)
			return err
		},
		from: formatFrom(cfg.FromName, cfg.FromAddress),
	}
}

// Send returns when the API answers or ctx is done, whichever comes first.
// The client has no context support, so an abandoned call finishes in the background.
func (s *ResendSender) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    htmlBody,
	}

	done := make(chan error, 1)
	go func() {
		done <- s.send(params)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

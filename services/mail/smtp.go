package mail

import (
	"context"
	"fmt"

	"github.com/tech-arch1tect/storefront/config"
	"github.com/tech-arch1tect/storefront/services/logging"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type smtpClient interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type SMTPSender struct {
	client      smtpClient
	fromName    string
	fromAddress string
}

func NewSMTPSender(cfg *config.MailConfig, logger *logging.Service) (*SMTPSender, error) {
	logger.Info("initializing smtp sender",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("encryption", cfg.Encryption),
		zap.String("from_address", cfg.FromAddress))

	clientOpts := []mail.Option{
		mail.WithPort(cfg.Port),
	}
	if cfg.SendTimeout > 0 {
		clientOpts = append(clientOpts, mail.WithTimeout(cfg.SendTimeout))
	}

	switch cfg.Encryption {
	case "ssl":
		clientOpts = append(clientOpts, mail.WithSSL())
	case "none":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	if cfg.Username != "" {
		clientOpts = append(clientOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password))
	}

	client, err := mail.NewClient(cfg.Host, clientOpts...)
	if err != nil {
		logger.Error("failed to create mail client", zap.Error(err), zap.String("host", cfg.Host))
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return newSMTPSenderWithClient(cfg, client), nil
}

func newSMTPSenderWithClient(cfg *config.MailConfig, client smtpClient) *SMTPSender {
	return &SMTPSender{
		client:      client,
		fromName:    cfg.FromName,
		fromAddress: cfg.FromAddress,
	}
}

func (s *SMTPSender) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	message := mail.NewMsg()

	if err := message.From(formatFrom(s.fromName, s.fromAddress)); err != nil {
		return fmt.Errorf("failed to set FROM address: %w", err)
	}
	if err := message.To(to...); err != nil {
		return fmt.Errorf("failed to set TO addresses: %w", err)
	}
	message.Subject(subject)
	message.SetBodyString(mail.TypeTextHTML, htmlBody)

	return s.client.DialAndSendWithContext(ctx, message)
}

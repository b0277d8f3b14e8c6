package mail

import (
	"fmt"

	"github.com/tech-arch1tect/storefront/config"
	"github.com/tech-arch1tect/storefront/services/logging"
	"go.uber.org/fx"
)

func NewSender(cfg *config.MailConfig, logger *logging.Service) (Sender, error) {
	switch cfg.Driver {
	case "smtp":
		return NewSMTPSender(cfg, logger)
	case "resend":
		return NewResendSender(cfg), nil
	case "log":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unsupported mail driver: %s", cfg.Driver)
	}
}

func ProvideMailService(cfg *config.Config, logger *logging.Service) (*Service, error) {
	mailLogger := logger.Named("mail")

	sender, err := NewSender(&cfg.Mail, mailLogger)
	if err != nil {
		return nil, err
	}
	return NewService(&cfg.Mail, sender, mailLogger)
}

var Module = fx.Options(
	fx.Provide(ProvideMailService),
)

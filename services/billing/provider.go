package billing

import (
	"fmt"

	"github.com/tech-arch1tect/storefront/config"
	"github.com/tech-arch1tect/storefront/services/logging"
	"go.uber.org/fx"
)

func ProvideProvisioner(cfg *config.Config, logger *logging.Service) (Provisioner, error) {
	billingLogger := logger.Named("billing")

	switch cfg.Billing.Provider {
	case "stripe":
		return NewStripeProvisioner(&cfg.Billing, billingLogger), nil
	case "none":
		billingLogger.Warn("billing provider disabled, accounts will be created without a customer reference")
		return DisabledProvisioner{}, nil
	default:
		return nil, fmt.Errorf("unsupported billing provider: %s", cfg.Billing.Provider)
	}
}

var Module = fx.Options(
	fx.Provide(ProvideProvisioner),
)

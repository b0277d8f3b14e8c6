package billing

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/tech-arch1tect/storefront/config"
	"github.com/tech-arch1tect/storefront/services/logging"
	"go.uber.org/zap"
)

type StripeProvisioner struct {
	api    *client.API
	config *config.BillingConfig
	logger *logging.Service
}

func NewStripeProvisioner(cfg *config.BillingConfig, logger *logging.Service) *StripeProvisioner {
	return NewStripeProvisionerWithBackends(cfg, nil, logger)
}

// NewStripeProvisionerWithBackends allows pointing the client at a different
// API host. A nil backends value uses the Stripe defaults.
func NewStripeProvisionerWithBackends(cfg *config.BillingConfig, backends *stripe.Backends, logger *logging.Service) *StripeProvisioner {
	api := &client.API{}
	api.Init(cfg.StripeKey, backends)

	return &StripeProvisioner{
		api:    api,
		config: cfg,
		logger: logger,
	}
}

func (p *StripeProvisioner) CreateCustomer(ctx context.Context, email string) (string, error) {
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx

	customer, err := p.api.Customers.New(params)
	if err != nil {
		p.logger.Error("failed to create billing customer", zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrProvider, err)
	}

	p.logger.Info("billing customer created", zap.String("customer_id", customer.ID))
	return customer.ID, nil
}

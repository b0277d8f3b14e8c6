package auth

import (
	"github.com/tech-arch1tect/storefront/config"
	"github.com/tech-arch1tect/storefront/services/logging"
	"github.com/tech-arch1tect/storefront/services/users"
	"go.uber.org/fx"
)

type ServiceParams struct {
	fx.In

	Config   *config.Config
	Codes    CodeStore
	Users    users.Repository
	Mail     MailService
	Billing  Provisioner
	Sessions SessionStore
	Logger   *logging.Service
}

func ProvideAuthService(p ServiceParams) (*Service, error) {
	return NewService(p.Config, Deps{
		Codes:    p.Codes,
		Users:    p.Users,
		Mail:     p.Mail,
		Billing:  p.Billing,
		Sessions: p.Sessions,
	}, p.Logger.Named("auth"))
}

var Module = fx.Options(
	fx.Provide(
		NewCodeStore,
		ProvideAuthService,
	),
)

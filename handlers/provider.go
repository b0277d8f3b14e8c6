package handlers

import (
	"github.com/tech-arch1tect/storefront/config"
	"github.com/tech-arch1tect/storefront/openapi"
	"go.uber.org/fx"
)

// Version is reported in the API document and by the CLI.
var Version = "dev"

func ProvideDocument(cfg *config.Config) *openapi.OpenAPI {
	return openapi.New(cfg.App.Name+" API", Version).
		Description("Account, session and cart endpoints of the storefront.").
		Server(cfg.App.URL, "").
		Tag("auth", "Verification codes, registration and login").
		Tag("user", "Current account and its sessions").
		Tag("catalog", "Products").
		Tag("cart", "Shopping cart").
		CookieAuth(sessionScheme, cfg.Session.Name, "Session cookie set by /login")
}

var Module = fx.Options(
	fx.Provide(
		NewAuthHandler,
		NewUserHandler,
		NewCartHandler,
		NewProductHandler,
		ProvideDocument,
	),
)

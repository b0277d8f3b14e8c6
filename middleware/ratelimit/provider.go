package ratelimit

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/storefront/config"
	"go.uber.org/fx"
)

// Limits holds the stores for the routes that are rate limited.
type Limits struct {
	Enabled      bool
	CodeRequests *Store
	Login        *Store
}

func ProvideLimits(lc fx.Lifecycle, cfg *config.Config) *Limits {
	rl := cfg.RateLimit
	limits := &Limits{
		Enabled:      rl.Enabled,
		CodeRequests: NewStore(rl.CodeRequests, rl.Period, rl.StaleEntryRetention),
		Login:        NewStore(rl.LoginAttempts, rl.Period, rl.StaleEntryRetention),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			limits.CodeRequests.StartCleanup(rl.StaleEntryRetention / 2)
			limits.Login.StartCleanup(rl.StaleEntryRetention / 2)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			limits.CodeRequests.Close()
			limits.Login.Close()
			return nil
		},
	})

	return limits
}

// CodeRequestsMiddleware limits verification code requests per IP and email.
func (l *Limits) CodeRequestsMiddleware() echo.MiddlewareFunc {
	return l.middleware(&Config{Store: l.CodeRequests, KeyGenerator: BodyFieldKeyGenerator("email")})
}

func (l *Limits) LoginMiddleware() echo.MiddlewareFunc {
	return l.middleware(&Config{Store: l.Login})
}

func (l *Limits) middleware(cfg *Config) echo.MiddlewareFunc {
	if l == nil || !l.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return Middleware(cfg)
}

var Module = fx.Options(
	fx.Provide(ProvideLimits),
)

package csrf

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/tech-arch1tect/storefront/config"
)

const contextKey = "csrf"

// Middleware returns a pass-through when CSRF protection is disabled. Safe
// methods receive a token cookie; unsafe methods must echo it back.
func Middleware(cfg config.CSRFConfig, sessionCfg config.SessionConfig) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	var sameSite http.SameSite
	switch sessionCfg.SameSite {
	case "strict":
		sameSite = http.SameSiteStrictMode
	case "none":
		sameSite = http.SameSiteNoneMode
	default:
		sameSite = http.SameSiteLaxMode
	}

	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLength:    cfg.TokenLength,
		TokenLookup:    cfg.TokenLookup,
		ContextKey:     contextKey,
		CookieName:     cfg.CookieName,
		CookieDomain:   sessionCfg.Domain,
		CookiePath:     sessionCfg.Path,
		CookieMaxAge:   cfg.CookieMaxAge,
		CookieSecure:   sessionCfg.Secure,
		CookieHTTPOnly: true,
		CookieSameSite: sameSite,
		ErrorHandler: func(err error, c echo.Context) error {
			return echo.NewHTTPError(http.StatusForbidden, "Invalid or missing CSRF token").SetInternal(err)
		},
	})
}

func GetToken(c echo.Context) string {
	if token, ok := c.Get(contextKey).(string); ok {
		return token
	}
	return ""
}

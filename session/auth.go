package session

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func GetUserID(c echo.Context) uint {
	manager := GetManager(c)
	if manager == nil {
		return 0
	}
	return manager.AccountID(c.Request().Context())
}

func IsAuthenticated(c echo.Context) bool {
	return GetUserID(c) != 0
}

// Logout destroys the session and returns the token it was stored under.
func Logout(c echo.Context) (string, error) {
	manager := GetManager(c)
	if manager == nil {
		return "", nil
	}
	ctx := c.Request().Context()
	token := manager.Token(ctx)
	return token, manager.Destroy(ctx)
}

func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAuthenticated(c) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			return next(c)
		}
	}
}

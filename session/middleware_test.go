package session

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/storefront/testutils"
)

func newTestEcho(t *testing.T, m *Manager) *echo.Echo {
	t.Helper()

	e := echo.New()
	e.Use(Middleware(m))

	e.POST("/login", func(c echo.Context) error {
		if _, err := m.Create(c.Request().Context(), 7); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
	e.POST("/login-then-fail", func(c echo.Context) error {
		if _, err := m.Create(c.Request().Context(), 7); err != nil {
			return err
		}
		return echo.NewHTTPError(http.StatusBadRequest, "rejected")
	})
	e.POST("/logout", func(c echo.Context) error {
		if _, err := Logout(c); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, strconv.FormatUint(uint64(GetUserID(c)), 10))
	}, RequireAuth())

	return e
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func serve(e *echo.Echo, method, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware(t *testing.T) {
	cfg := testutils.GetTestConfig().Session

	t.Run("login cookie authenticates later requests", func(t *testing.T) {
		m := newTestManager(t, cfg)
		e := newTestEcho(t, m)

		rec := serve(e, http.MethodPost, "/login", nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
		cookie := sessionCookie(t, rec, cfg.Name)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)

		rec = serve(e, http.MethodGet, "/me", cookie)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "7", rec.Body.String())
	})

	t.Run("no cookie is unauthenticated", func(t *testing.T) {
		m := newTestManager(t, cfg)
		e := newTestEcho(t, m)

		rec := serve(e, http.MethodGet, "/me", nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("logout ends the session", func(t *testing.T) {
		m := newTestManager(t, cfg)
		e := newTestEcho(t, m)
		cookie := sessionCookie(t, serve(e, http.MethodPost, "/login", nil), cfg.Name)
		require.NotNil(t, cookie)

		rec := serve(e, http.MethodPost, "/logout", cookie)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = serve(e, http.MethodGet, "/me", cookie)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("cookie is written alongside handler errors", func(t *testing.T) {
		m := newTestManager(t, cfg)
		e := newTestEcho(t, m)

		rec := serve(e, http.MethodPost, "/login-then-fail", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotNil(t, sessionCookie(t, rec, cfg.Name))
		assert.Len(t, rec.Result().Header.Values("Set-Cookie"), 1)
	})

	t.Run("nil manager passes through", func(t *testing.T) {
		e := echo.New()
		e.Use(Middleware(nil))
		e.GET("/", func(c echo.Context) error {
			assert.Nil(t, GetManager(c))
			assert.False(t, IsAuthenticated(c))
			return c.NoContent(http.StatusOK)
		})

		rec := serve(e, http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("manager is reachable from the request context", func(t *testing.T) {
		m := newTestManager(t, cfg)
		e := echo.New()
		e.Use(Middleware(m))
		e.GET("/", func(c echo.Context) error {
			assert.Same(t, m, GetManagerFromContext(c.Request().Context()))
			return c.NoContent(http.StatusOK)
		})

		serve(e, http.MethodGet, "/", nil)
	})
}

package session

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type contextKey string

const sessionManagerKey = "session_manager"

const managerContextKey contextKey = "session_manager"

// Middleware loads the session named by the request cookie before the handler
// runs and saves it (writing the cookie) afterwards.
func Middleware(manager *Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if manager == nil {
				return next(c)
			}

			c.Set(sessionManagerKey, manager)

			var handlerErr error

			rw := &responseWriterWrapper{
				ResponseWriter: c.Response().Writer,
				echo:           c.Response(),
			}

			handler := manager.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := context.WithValue(r.Context(), managerContextKey, manager)
				c.SetRequest(r.WithContext(ctx))
				c.Response().Writer = w
				handlerErr = next(c)
				if handlerErr != nil {
					// render inside LoadAndSave so the session cookie is written with the error body
					c.Error(handlerErr)
				}
			}))

			original := c.Response().Writer
			handler.ServeHTTP(rw, c.Request())
			c.Response().Writer = original
			return handlerErr
		}
	}
}

// responseWriterWrapper keeps echo's recorded status in sync when scs writes
// through the underlying writer.
type responseWriterWrapper struct {
	http.ResponseWriter
	echo *echo.Response
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if w.echo.Status == 0 {
		w.echo.Status = statusCode
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func GetManager(c echo.Context) *Manager {
	if manager, ok := c.Get(sessionManagerKey).(*Manager); ok {
		return manager
	}
	return nil
}

func GetManagerFromContext(ctx context.Context) *Manager {
	if manager, ok := ctx.Value(managerContextKey).(*Manager); ok {
		return manager
	}
	return nil
}

// TrackingMiddleware refreshes the tracked last-used time of authenticated
// sessions after the handler has run.
func TrackingMiddleware(tracker *Tracker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			if tracker == nil || !IsAuthenticated(c) {
				return err
			}

			manager := GetManager(c)
			ctx := c.Request().Context()
			if token := manager.Token(ctx); token != "" {
				if touchErr := tracker.Touch(ctx, token); touchErr != nil {
					tracker.logger.Warn("failed to refresh session tracking", zap.Error(touchErr))
				}
			}

			return err
		}
	}
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/tech-arch1tect/storefront/config"
	"github.com/tech-arch1tect/storefront/services/logging"
	"go.uber.org/zap"
)

type Server struct {
	echo   *echo.Echo
	cfg    *config.Config
	logger *logging.Service
}

// errorBody mirrors the envelope the handlers write on success.
type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func New(cfg *config.Config, logger *logging.Service) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		cfg:    cfg,
		logger: logger,
	}

	e.HTTPErrorHandler = s.handleError
	e.Validator = NewValidator()

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(logging.RequestLogger(logger, "/health"))
	e.Use(middleware.Recover())

	if origins := cfg.Server.AllowedOrigins; len(origins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     origins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     allowedHeaders(cfg.CSRF),
			AllowCredentials: true,
		}))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.Server.StaticDir != "" {
		e.Static("/", cfg.Server.StaticDir)
	}

	return s
}

// allowedHeaders lists the request headers browsers may send cross-origin.
// Header sources in the CSRF token lookup are included when the guard is on.
func allowedHeaders(csrf config.CSRFConfig) []string {
	headers := []string{echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID}
	if !csrf.Enabled {
		return headers
	}
	for _, source := range strings.Split(csrf.TokenLookup, ",") {
		kind, rest, ok := strings.Cut(strings.TrimSpace(source), ":")
		if !ok || kind != "header" {
			continue
		}
		// header:<name>:<value prefix>
		if name, _, _ := strings.Cut(rest, ":"); name != "" {
			headers = append(headers, name)
		}
	}
	return headers
}

// handleError renders every error as {success:false, message}. Responses
// already written (for example by the session middleware) are left alone.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		switch m := httpErr.Message.(type) {
		case string:
			message = m
		case nil:
			message = http.StatusText(status)
		default:
			message = fmt.Sprint(m)
		}
		if httpErr.Internal != nil {
			err = httpErr.Internal
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.Error(err),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, errorBody{Success: false, Message: message})
	}
	if err != nil {
		s.logger.Error("failed to write error response", zap.Error(err))
	}
}

func (s *Server) Address() string {
	return net.JoinHostPort(s.cfg.Server.Host, s.cfg.Server.Port)
}

// Start listens in the calling goroutine until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting storefront server", zap.String("address", s.Address()))

	if err := s.echo.Start(s.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return &Validator{validate: v}
}

func (v *Validator) Validate(i any) error {
	return v.validate.Struct(i)
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

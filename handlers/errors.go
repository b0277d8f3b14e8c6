package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/storefront/services/auth"
	"github.com/tech-arch1tect/storefront/services/cart"
	"github.com/tech-arch1tect/storefront/session"
)

type errorMapping struct {
	err     error
	status  int
	message string
}

// Store and provider failures get a fixed message; their detail stays in
// the log.
var errorMappings = []errorMapping{
	{auth.ErrMissingFields, http.StatusBadRequest, "All fields are required"},
	{auth.ErrInvalidEmailDomain, http.StatusBadRequest, "Email address domain is not allowed"},
	{auth.ErrWeakPassword, http.StatusBadRequest, ""},
	{auth.ErrInvalidOrExpiredCode, http.StatusBadRequest, "Invalid or expired verification code"},
	{auth.ErrEmailAlreadyRegistered, http.StatusConflict, "Email already registered"},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{auth.ErrUnauthenticated, http.StatusUnauthorized, "Authentication required"},
	{auth.ErrAccountNotFound, http.StatusNotFound, "Account not found"},
	{auth.ErrStoreUnavailable, http.StatusInternalServerError, "Service temporarily unavailable"},
	{auth.ErrBillingProvisioningFailed, http.StatusBadGateway, "Could not create billing account"},
	{auth.ErrNotificationDeliveryFailed, http.StatusBadGateway, "Could not send verification email"},
	{cart.ErrInvalidQuantity, http.StatusBadRequest, "Quantity must be at least 1"},
	{cart.ErrItemNotFound, http.StatusNotFound, "Cart item not found"},
	{session.ErrSessionNotFound, http.StatusNotFound, "Session not found"},
}

// apiError converts a service error into an *echo.HTTPError carrying a
// user-safe message. The original error is kept as the internal cause.
func apiError(err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		message := m.message
		if message == "" {
			message = err.Error()
		}
		return echo.NewHTTPError(m.status, message).SetInternal(err)
	}

	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
}

// bind decodes the request body and runs the registered validator. An absent
// required field is reported as missing fields; other rule failures name the
// field.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}
	if c.Echo().Validator == nil {
		return nil
	}
	if err := c.Validate(req); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return apiError(fmt.Errorf("%w: %w", auth.ErrMissingFields, err))
		}
		msgs = append(msgs, fieldMessage(fe))
	}
	return echo.NewHTTPError(http.StatusBadRequest, strings.Join(msgs, "; ")).SetInternal(err)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

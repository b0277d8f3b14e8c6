package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/storefront/services/auth"
	"github.com/tech-arch1tect/storefront/services/logging"
	"github.com/tech-arch1tect/storefront/session"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth    *auth.Service
	tracker *session.Tracker
	logger  *logging.Service
}

func NewAuthHandler(authService *auth.Service, tracker *session.Tracker, logger *logging.Service) *AuthHandler {
	return &AuthHandler{
		auth:    authService,
		tracker: tracker,
		logger:  logger,
	}
}

func (h *AuthHandler) SendVerificationCode(c echo.Context) error {
	var req SendCodeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.auth.RequestCode(c.Request().Context(), req.Email)
	if err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, CodeSentResponse{
		Envelope:  ok("Verification code sent"),
		ExpiresAt: result.ExpiresAt,
	})
}

func (h *AuthHandler) VerifyCode(c echo.Context) error {
	var req VerifyCodeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auth.VerifyCode(c.Request().Context(), req.Email, req.Code); err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, ok("Code verified"))
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.auth.Register(c.Request().Context(), auth.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		Code:       req.Code,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		BirthDay:   req.BirthDay,
		BirthMonth: req.BirthMonth,
		BirthYear:  req.BirthYear,
	})
	if err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusCreated, RegisterResponse{
		Envelope:  ok("Account created"),
		AccountID: result.AccountID,
		Redirect:  result.Redirect,
	})
}

// Login establishes the session and records it for the session list. A
// tracking failure does not fail the login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	result, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return apiError(err)
	}

	if h.tracker != nil {
		if err := h.tracker.Track(ctx, result.AccountID, result.Token, c.RealIP(), c.Request().UserAgent()); err != nil {
			h.logger.Warn("failed to track session", zap.Error(err), zap.Uint("user_id", result.AccountID))
		}
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Envelope: ok("Logged in"),
		Redirect: result.Redirect,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	token, err := session.Logout(c)
	if err != nil {
		h.logger.Error("failed to destroy session", zap.Error(err))
		return apiError(err)
	}

	if token != "" && h.tracker != nil {
		if err := h.tracker.Remove(c.Request().Context(), token); err != nil {
			h.logger.Warn("failed to remove tracked session", zap.Error(err))
		}
	}

	return c.JSON(http.StatusOK, ok("Logged out"))
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/storefront/services/auth"
	"github.com/tech-arch1tect/storefront/services/logging"
	"github.com/tech-arch1tect/storefront/session"
	"go.uber.org/zap"
)

type UserHandler struct {
	auth    *auth.Service
	tracker *session.Tracker
	logger  *logging.Service
}

func NewUserHandler(authService *auth.Service, tracker *session.Tracker, logger *logging.Service) *UserHandler {
	return &UserHandler{
		auth:    authService,
		tracker: tracker,
		logger:  logger,
	}
}

func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.auth.CurrentAccount(c.Request().Context(), session.GetUserID(c))
	if err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, ProfileResponse{Envelope: ok(""), User: user})
}

func (h *UserHandler) Sessions(c echo.Context) error {
	ctx := c.Request().Context()
	sessions, err := h.tracker.List(ctx, session.GetUserID(c), currentToken(c))
	if err != nil {
		h.logger.Error("failed to list sessions", zap.Error(err))
		return apiError(err)
	}

	return c.JSON(http.StatusOK, SessionsResponse{Envelope: ok(""), Sessions: sessions})
}

// RevokeSession ends one of the account's other sessions. The current
// session is ended through logout instead.
func (h *UserHandler) RevokeSession(c echo.Context) error {
	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || sessionID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid session id")
	}

	ctx := c.Request().Context()
	userID := session.GetUserID(c)

	sessions, err := h.tracker.List(ctx, userID, currentToken(c))
	if err != nil {
		return apiError(err)
	}
	for _, s := range sessions {
		if s.ID == uint(sessionID) && s.Current {
			return echo.NewHTTPError(http.StatusBadRequest, "Use logout to end the current session")
		}
	}

	if err := h.tracker.Revoke(ctx, userID, uint(sessionID)); err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, ok("Session revoked"))
}

func currentToken(c echo.Context) string {
	manager := session.GetManager(c)
	if manager == nil {
		return ""
	}
	return manager.Token(c.Request().Context())
}

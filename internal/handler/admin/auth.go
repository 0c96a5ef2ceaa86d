// Package admin holds the token-gated management endpoints. Every route
// except login sits behind the bearer token middleware.
package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/handler"
	"github.com/vinsight/vinsight/internal/middleware"
	"github.com/vinsight/vinsight/internal/service"
)

// AuthHandler exposes admin login and password rotation.
type AuthHandler struct {
	auth   *service.AuthService
	logger zerolog.Logger
}

// NewAuthHandler creates the admin auth handler.
func NewAuthHandler(auth *service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/admin/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return handler.RespondError(c, h.logger, domain.Invalid("auth.login", "malformed request body"))
	}
	if err := c.Validate(&req); err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	token, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"token": token, "success": true})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// ChangePassword handles POST /api/admin/password for the authenticated
// administrator.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return handler.RespondError(c, h.logger, domain.Invalid("auth.password", "malformed request body"))
	}
	if err := c.Validate(&req); err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	username := middleware.AdminUsername(c)
	if username == "" {
		return handler.RespondError(c, h.logger, domain.Unauthorized("auth.password", "authentication required"))
	}

	if err := h.auth.ChangePassword(c.Request().Context(), username, req.CurrentPassword, req.NewPassword); err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"updated": true})
}

package admin

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/handler"
	"github.com/vinsight/vinsight/internal/service"
)

// SettingsHandler exposes the namespaced settings store.
type SettingsHandler struct {
	settings *service.SettingsService
	logger   zerolog.Logger
}

// NewSettingsHandler creates the admin settings handler.
func NewSettingsHandler(settings *service.SettingsService, logger zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

// List handles GET /api/admin/settings.
func (h *SettingsHandler) List(c echo.Context) error {
	settings, err := h.settings.GetAll(c.Request().Context())
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// Get handles GET /api/admin/settings/:key.
func (h *SettingsHandler) Get(c echo.Context) error {
	setting, err := h.settings.Get(c.Request().Context(), c.Param("key"))
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, setting)
}

// Put handles PUT /api/admin/settings/:key. The body is the raw JSON
// value for the namespace.
func (h *SettingsHandler) Put(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return handler.RespondError(c, h.logger, domain.Invalid("settings.upsert", "unreadable request body"))
	}

	setting, err := h.settings.Upsert(c.Request().Context(), c.Param("key"), json.RawMessage(body))
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, setting)
}

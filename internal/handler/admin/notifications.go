package admin

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/handler"
)

// NotificationsHandler exposes the email outbox audit trail.
type NotificationsHandler struct {
	outbox domain.OutboxStore
	logger zerolog.Logger
}

// NewNotificationsHandler creates the outbox handler.
func NewNotificationsHandler(outbox domain.OutboxStore, logger zerolog.Logger) *NotificationsHandler {
	return &NotificationsHandler{outbox: outbox, logger: logger}
}

// List handles GET /api/admin/notifications, newest first.
func (h *NotificationsHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	entries, err := h.outbox.List(c.Request().Context(), limit)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, entries)
}

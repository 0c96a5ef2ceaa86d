package admin

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/handler"
	"github.com/vinsight/vinsight/internal/service"
)

// ContactHandler exposes contact submission triage.
type ContactHandler struct {
	contacts *service.ContactService
	logger   zerolog.Logger
}

// NewContactHandler creates the admin contact handler.
func NewContactHandler(contacts *service.ContactService, logger zerolog.Logger) *ContactHandler {
	return &ContactHandler{contacts: contacts, logger: logger}
}

// List handles GET /api/admin/contact?status=new.
func (h *ContactHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	submissions, err := h.contacts.List(c.Request().Context(), c.QueryParam("status"), limit)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, submissions)
}

type contactStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SetStatus handles POST /api/admin/contact/:id/status.
func (h *ContactHandler) SetStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	var req contactStatusRequest
	if err := c.Bind(&req); err != nil {
		return handler.RespondError(c, h.logger, domain.Invalid("contact.status", "malformed request body"))
	}
	if err := c.Validate(&req); err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	contact, err := h.contacts.SetStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, contact)
}

// Delete handles DELETE /api/admin/contact/:id.
func (h *ContactHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	if err := h.contacts.Delete(c.Request().Context(), id); err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

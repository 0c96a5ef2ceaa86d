package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/handler"
	"github.com/vinsight/vinsight/internal/service"
)

// ContactHandler exposes the public contact form endpoint.
type ContactHandler struct {
	contacts *service.ContactService
	logger   zerolog.Logger
}

// NewContactHandler creates the public contact handler.
func NewContactHandler(contacts *service.ContactService, logger zerolog.Logger) *ContactHandler {
	return &ContactHandler{contacts: contacts, logger: logger}
}

type createContactRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required"`
}

// Create handles POST /api/contact.
func (h *ContactHandler) Create(c echo.Context) error {
	var req createContactRequest
	if err := c.Bind(&req); err != nil {
		return handler.RespondError(c, h.logger, domain.Invalid("contact.submit", "malformed request body"))
	}
	if err := c.Validate(&req); err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	contact, err := h.contacts.Submit(c.Request().Context(), domain.CreateContactParams{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, contact)
}

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

// ReviewHandler exposes review moderation.
type ReviewHandler struct {
	reviews *service.ReviewService
	logger  zerolog.Logger
}

// NewReviewHandler creates the admin review handler.
func NewReviewHandler(reviews *service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

// List handles GET /api/admin/reviews?status=pending.
func (h *ReviewHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	reviews, err := h.reviews.List(c.Request().Context(), c.QueryParam("status"), limit)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, reviews)
}

type moderateRequest struct {
	Status string `json:"status" validate:"required"`
}

// SetStatus handles POST /api/admin/reviews/:id/status.
func (h *ReviewHandler) SetStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	var req moderateRequest
	if err := c.Bind(&req); err != nil {
		return handler.RespondError(c, h.logger, domain.Invalid("review.moderate", "malformed request body"))
	}
	if err := c.Validate(&req); err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	review, err := h.reviews.Moderate(c.Request().Context(), id, req.Status)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, review)
}

type featuredRequest struct {
	Featured bool `json:"featured"`
}

// SetFeatured handles POST /api/admin/reviews/:id/featured.
func (h *ReviewHandler) SetFeatured(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	var req featuredRequest
	if err := c.Bind(&req); err != nil {
		return handler.RespondError(c, h.logger, domain.Invalid("review.feature", "malformed request body"))
	}

	review, err := h.reviews.SetFeatured(c.Request().Context(), id, req.Featured)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, review)
}

// Delete handles DELETE /api/admin/reviews/:id.
func (h *ReviewHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	if err := h.reviews.Delete(c.Request().Context(), id); err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/handler"
	"github.com/vinsight/vinsight/internal/service"
)

// ReviewHandler exposes public review submission and the approved listing.
type ReviewHandler struct {
	reviews *service.ReviewService
	logger  zerolog.Logger
}

// NewReviewHandler creates the public review handler.
func NewReviewHandler(reviews *service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

type createReviewRequest struct {
	Name   string `json:"name" validate:"required,max=120"`
	Email  string `json:"email" validate:"omitempty,email"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Title  string `json:"title" validate:"max=200"`
	Body   string `json:"body" validate:"required"`
}

// Create handles POST /api/reviews. New reviews start pending moderation.
func (h *ReviewHandler) Create(c echo.Context) error {
	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return handler.RespondError(c, h.logger, domain.Invalid("review.submit", "malformed request body"))
	}
	if err := c.Validate(&req); err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	review, err := h.reviews.Submit(c.Request().Context(), domain.CreateReviewParams{
		Name:   req.Name,
		Email:  req.Email,
		Rating: req.Rating,
		Title:  req.Title,
		Body:   req.Body,
	})
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, review)
}

// List handles GET /api/reviews, returning approved reviews only.
func (h *ReviewHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	reviews, err := h.reviews.ListPublic(c.Request().Context(), limit)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, reviews)
}

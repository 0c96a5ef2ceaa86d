package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/handler"
	"github.com/vinsight/vinsight/internal/service"
)

// OrderHandler exposes order management: listing, stats, partial updates,
// report status, deletion and confirmation resend.
type OrderHandler struct {
	orders *service.OrderService
	logger zerolog.Logger
}

// NewOrderHandler creates the admin order handler.
func NewOrderHandler(orders *service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// queryAlias returns the first non-empty query parameter among names.
func queryAlias(c echo.Context, names ...string) string {
	for _, name := range names {
		if v := c.QueryParam(name); v != "" {
			return v
		}
	}
	return ""
}

// List handles GET /api/admin/orders with optional status, date range,
// search, currency and paging filters. Filter names follow the documented
// camelCase contract, with snake_case accepted as an alias.
func (h *OrderHandler) List(c echo.Context) error {
	filter := domain.OrderFilter{
		Status:   c.QueryParam("status"),
		Search:   queryAlias(c, "q", "search"),
		Currency: c.QueryParam("currency"),
	}
	if v := c.QueryParam("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := c.QueryParam("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}
	if v := queryAlias(c, "startDate", "start_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.StartDate = &t
		}
	}
	if v := queryAlias(c, "endDate", "end_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.EndDate = &end
		}
	}

	orders, err := h.orders.ListOrders(c.Request().Context(), filter)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// Stats handles GET /api/admin/orders/stats?days=30.
func (h *OrderHandler) Stats(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))

	stats, err := h.orders.Stats(c.Request().Context(), days)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Counts handles GET /api/admin/counts, the dashboard badge numbers.
func (h *OrderHandler) Counts(c echo.Context) error {
	counts, err := h.orders.Counts(c.Request().Context())
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, counts)
}

// Sales handles GET /api/admin/sales?search=..., completed orders only.
func (h *OrderHandler) Sales(c echo.Context) error {
	sales, err := h.orders.Sales(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, sales)
}

// Get handles GET /api/admin/orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.orders.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, order)
}

// Update handles PATCH /api/admin/orders/:id. The body is a free-form
// field map; keys outside the allow-list are dropped.
func (h *OrderHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	var fields map[string]interface{}
	if err := c.Bind(&fields); err != nil {
		return handler.RespondError(c, h.logger, domain.Invalid("order.update", "malformed request body"))
	}

	order, err := h.orders.UpdateOrderFields(c.Request().Context(), id, fields)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, order)
}

// reportStatusRequest accepts both the documented camelCase names and
// their snake_case equivalents.
type reportStatusRequest struct {
	ReportStatus string  `json:"reportStatus"`
	AltStatus    string  `json:"status"`
	ReportURL    *string `json:"reportUrl"`
	AltReportURL *string `json:"report_url"`
}

// SetStatus handles PUT /api/admin/orders/:id/status.
func (h *OrderHandler) SetStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	var req reportStatusRequest
	if err := c.Bind(&req); err != nil {
		return handler.RespondError(c, h.logger, domain.Invalid("order.status", "malformed request body"))
	}
	if req.ReportStatus == "" {
		req.ReportStatus = req.AltStatus
	}
	if req.ReportURL == nil {
		req.ReportURL = req.AltReportURL
	}
	if req.ReportStatus == "" {
		return handler.RespondError(c, h.logger,
			domain.AddFieldError(nil, "reportStatus", "report status is required"))
	}

	order, err := h.orders.SetReportStatus(c.Request().Context(), id, req.ReportStatus, req.ReportURL)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, order)
}

// Delete handles DELETE /api/admin/orders/:id.
func (h *OrderHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	if err := h.orders.DeleteOrder(c.Request().Context(), id); err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Resend handles POST /api/admin/orders/:id/resend. Unlike lifecycle
// notifications, a failed delivery here reports its error to the caller.
func (h *OrderHandler) Resend(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	if err := h.orders.ResendConfirmation(c.Request().Context(), id); err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"sent": true})
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, domain.Invalid("admin.request", "invalid id")
	}
	return id, nil
}

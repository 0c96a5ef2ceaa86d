// Package api holds the public storefront endpoints. Nothing here requires
// authentication; admin-only surfaces live in the admin package.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/handler"
	"github.com/vinsight/vinsight/internal/service"
)

// OrderHandler exposes order creation, payment completion and lookup.
type OrderHandler struct {
	orders *service.OrderService
	logger zerolog.Logger
}

// NewOrderHandler creates the public order handler.
func NewOrderHandler(orders *service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

type createOrderRequest struct {
	CustomerEmail       string  `json:"customer_email" validate:"required,email"`
	VehicleType         string  `json:"vehicle_type" validate:"required"`
	IdentificationType  string  `json:"identification_type" validate:"required"`
	IdentificationValue string  `json:"identification_value" validate:"required"`
	VinNumber           *string `json:"vin_number"`
	PackageType         string  `json:"package_type" validate:"required"`
	CountryCode         string  `json:"country_code"`
	Currency            string  `json:"currency"`
	Amount              float64 `json:"amount"`
}

// Create handles POST /api/orders/create.
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return handler.RespondError(c, h.logger, domain.Invalid("order.create", "malformed request body"))
	}
	if err := c.Validate(&req); err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	amount := req.Amount
	if service.ValidPackage(req.PackageType) {
		// Known tiers are always priced server-side so the client cannot
		// name its own price.
		listed, err := service.PackagePriceFor(req.PackageType, req.Currency)
		if err == nil {
			amount = listed
		}
	}

	order, err := h.orders.CreateOrder(c.Request().Context(), domain.CreateOrderParams{
		CustomerEmail:       req.CustomerEmail,
		VehicleType:         req.VehicleType,
		IdentificationType:  req.IdentificationType,
		IdentificationValue: req.IdentificationValue,
		VinNumber:           req.VinNumber,
		PackageType:         req.PackageType,
		CountryCode:         req.CountryCode,
		Currency:            req.Currency,
		Amount:              amount,
	})
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":     true,
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
	})
}

// completeOrderRequest accepts both the documented camelCase names and
// their snake_case equivalents.
type completeOrderRequest struct {
	OrderID      int64  `json:"orderId"`
	PaymentID    string `json:"paymentId"`
	AltOrderID   int64  `json:"order_id"`
	AltPaymentID string `json:"payment_id"`
}

// Complete handles POST /api/orders/complete, the client-side payment
// callback. Safe to call after the webhook already completed the order.
func (h *OrderHandler) Complete(c echo.Context) error {
	var req completeOrderRequest
	if err := c.Bind(&req); err != nil {
		return handler.RespondError(c, h.logger, domain.Invalid("order.complete", "malformed request body"))
	}
	if req.OrderID == 0 {
		req.OrderID = req.AltOrderID
	}
	if req.PaymentID == "" {
		req.PaymentID = req.AltPaymentID
	}

	var verr error
	if req.OrderID == 0 {
		verr = domain.AddFieldError(verr, "orderId", "order id is required")
	}
	if req.PaymentID == "" {
		verr = domain.AddFieldError(verr, "paymentId", "payment id is required")
	}
	if verr != nil {
		return handler.RespondError(c, h.logger, verr)
	}

	if _, err := h.orders.CompleteOrder(c.Request().Context(), req.OrderID, req.PaymentID); err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "order completed",
	})
}

// Get handles GET /api/orders/:id, accepting a numeric id or an order
// number.
func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.orders.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, order)
}

// Checkout handles POST /api/orders/:id/checkout, minting a payment
// session with the configured processor.
func (h *OrderHandler) Checkout(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return handler.RespondError(c, h.logger, domain.Invalid("order.checkout", "invalid order id"))
	}

	checkout, err := h.orders.CreateCheckout(c.Request().Context(), id)
	if err != nil {
		return handler.RespondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"session_id": checkout.SessionID,
		"url":        checkout.URL,
		"provider":   checkout.Provider,
	})
}

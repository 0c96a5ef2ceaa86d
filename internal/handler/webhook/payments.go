// Package webhook receives asynchronous payment confirmations from the
// configured processor.
package webhook

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/billing"
	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/service"
	"github.com/vinsight/vinsight/internal/telemetry"
)

const maxPayloadBytes = 1 << 20

// PaymentHandler processes provider webhooks. The response policy keeps
// the processor from retrying forever: events we recognize but cannot or
// need not act on are acknowledged with 2xx, and only genuine processing
// failures (signature rejection, database errors) answer non-2xx.
type PaymentHandler struct {
	provider billing.Provider
	orders   *service.OrderService
	logger   zerolog.Logger
}

// NewPaymentHandler creates the payments webhook handler.
func NewPaymentHandler(provider billing.Provider, orders *service.OrderService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		provider: provider,
		orders:   orders,
		logger:   logger.With().Str("component", "webhook").Logger(),
	}
}

// Handle serves POST /api/payments/webhook.
func (h *PaymentHandler) Handle(c echo.Context) error {
	start := time.Now()
	providerName := h.provider.Name()

	if telemetry.Business != nil {
		telemetry.Business.WebhookReceived.WithLabelValues(providerName).Inc()
		defer func() {
			telemetry.Business.WebhookLatency.WithLabelValues(providerName).Observe(time.Since(start).Seconds())
		}()
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPayloadBytes))
	if err != nil {
		h.fail(providerName, "read_body")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable payload"})
	}

	var signature string
	if name := h.provider.SignatureHeader(); name != "" {
		signature = c.Request().Header.Get(name)
	}

	event, err := h.provider.ParseWebhook(c.Request().Context(), payload, signature)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidWebhookSignature) {
			h.fail(providerName, "bad_signature")
			h.logger.Warn().Str("provider", providerName).Msg("webhook signature rejected")
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid signature"})
		}
		h.fail(providerName, "parse")
		h.logger.Warn().Err(err).Str("provider", providerName).Msg("webhook payload rejected")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed payload"})
	}

	logger := h.logger.With().
		Str("provider", providerName).
		Str("event", event.ProviderEvent).
		Logger()

	if event.Type == billing.EventIgnored {
		if telemetry.Business != nil {
			telemetry.Business.WebhookIgnored.WithLabelValues(providerName, event.ProviderEvent).Inc()
		}
		logger.Debug().Msg("webhook event ignored")
		return c.JSON(http.StatusOK, map[string]bool{"received": true})
	}

	if event.OrderID == 0 {
		// A payment event with no order reference. Acknowledge it so the
		// processor stops retrying; there is nothing to correlate it to.
		if telemetry.Business != nil {
			telemetry.Business.WebhookIgnored.WithLabelValues(providerName, event.ProviderEvent).Inc()
		}
		logger.Warn().Str("payment_id", event.PaymentID).Msg("webhook event carries no order reference")
		return c.JSON(http.StatusOK, map[string]bool{"received": true})
	}

	ctx := c.Request().Context()

	switch event.Type {
	case billing.EventPaymentSucceeded:
		_, err = h.orders.CompleteOrder(ctx, event.OrderID, event.PaymentID)
	case billing.EventPaymentFailed:
		err = h.orders.FailOrder(ctx, event.OrderID, event.PaymentID)
	}

	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			logger.Warn().Int64("order_id", event.OrderID).Msg("webhook references unknown order")
			return c.JSON(http.StatusOK, map[string]bool{"received": true})
		}
		h.fail(providerName, "process")
		logger.Error().Err(err).Int64("order_id", event.OrderID).Msg("webhook processing failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "processing failed"})
	}

	if telemetry.Business != nil {
		telemetry.Business.WebhookProcessed.WithLabelValues(providerName, event.ProviderEvent).Inc()
	}
	logger.Info().Int64("order_id", event.OrderID).Str("type", event.Type).Msg("webhook processed")

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

func (h *PaymentHandler) fail(provider, reason string) {
	if telemetry.Business != nil {
		telemetry.Business.WebhookFailed.WithLabelValues(provider, reason).Inc()
	}
}

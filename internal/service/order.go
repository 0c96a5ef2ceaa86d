package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/billing"
	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/notify"
	"github.com/vinsight/vinsight/internal/telemetry"
)

const (
	maxStatsDays     = 365
	defaultStatsDays = 30
)

// OrderService owns the order lifecycle: creation, payment completion,
// report status, partial updates and deletion. It is the only writer to
// the order store.
type OrderService struct {
	store      domain.OrderStore
	provider   billing.Provider
	notifier   notify.Notifier
	dispatcher *notify.Dispatcher
	successURL string
	cancelURL  string
	logger     zerolog.Logger
}

// NewOrderService creates the order lifecycle service.
func NewOrderService(store domain.OrderStore, provider billing.Provider, notifier notify.Notifier,
	dispatcher *notify.Dispatcher, successURL, cancelURL string, logger zerolog.Logger) *OrderService {
	return &OrderService{
		store:      store,
		provider:   provider,
		notifier:   notifier,
		dispatcher: dispatcher,
		successURL: successURL,
		cancelURL:  cancelURL,
		logger:     logger.With().Str("component", "service.order").Logger(),
	}
}

// CreateOrder validates and persists a new order, then queues the pending
// notifications. Validation reports every failing field at once, not just
// the first.
func (s *OrderService) CreateOrder(ctx context.Context, params domain.CreateOrderParams) (*domain.Order, error) {
	const op = "order.create"

	var verr error
	if strings.TrimSpace(params.CustomerEmail) == "" {
		verr = domain.AddFieldError(verr, "customer_email", "customer email is required")
	}
	if strings.TrimSpace(params.VehicleType) == "" {
		verr = domain.AddFieldError(verr, "vehicle_type", "vehicle type is required")
	}
	if strings.TrimSpace(params.IdentificationType) == "" {
		verr = domain.AddFieldError(verr, "identification_type", "identification type is required")
	}
	if strings.TrimSpace(params.IdentificationValue) == "" {
		verr = domain.AddFieldError(verr, "identification_value", "identification value is required")
	}
	if strings.TrimSpace(params.PackageType) == "" {
		verr = domain.AddFieldError(verr, "package_type", "package type is required")
	}
	if params.Amount <= 0 {
		verr = domain.AddFieldError(verr, "amount", "amount must be greater than zero")
	}
	if verr != nil {
		return nil, verr
	}

	if params.CountryCode == "" {
		params.CountryCode = "US"
	}
	if params.Currency == "" {
		params.Currency = "USD"
	}
	params.Currency = strings.ToUpper(params.Currency)
	if params.PaymentProvider == "" {
		params.PaymentProvider = s.provider.Name()
	}

	order, err := s.store.Insert(ctx, params)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create order")
	}

	if telemetry.Business != nil {
		telemetry.Business.OrdersCreated.WithLabelValues(order.PaymentProvider, order.PackageType).Inc()
		telemetry.Business.OrderValue.WithLabelValues(order.Currency).Observe(order.Amount)
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("package", order.PackageType).
		Str("currency", order.Currency).
		Float64("amount", order.Amount).
		Msg("order created")

	s.notifier.OrderPending(order.ID)

	return order, nil
}

// CreateCheckout mints a payment session for a pending order. The order
// reference rides along in the session so webhook confirmations correlate
// back without guessing.
func (s *OrderService) CreateCheckout(ctx context.Context, orderID int64) (*billing.Checkout, error) {
	const op = "order.checkout"

	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == domain.PaymentStatusCompleted {
		return nil, domain.Conflict(op, "order is already paid")
	}

	checkout, err := s.provider.CreateCheckout(ctx, billing.CheckoutParams{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		Amount:         order.Amount,
		Currency:       order.Currency,
		ProductLabel:   fmt.Sprintf("Vehicle history report (%s)", order.PackageType),
		CustomerEmail:  order.CustomerEmail,
		SuccessURL:     s.successURL,
		CancelURL:      s.cancelURL,
		IdempotencyKey: fmt.Sprintf("checkout-%s", order.OrderNumber),
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.EPAYMENT, op, "failed to create checkout session")
	}

	if telemetry.Business != nil {
		telemetry.Business.CheckoutsCreated.WithLabelValues(checkout.Provider).Inc()
	}

	return checkout, nil
}

// CompleteOrder records a successful payment for an order. The transition
// is guarded in storage, so concurrent confirmations (webhook racing the
// client callback) complete the order exactly once; the loser observes a
// no-op and sends nothing.
func (s *OrderService) CompleteOrder(ctx context.Context, orderID int64, paymentID string) (*domain.Order, error) {
	const op = "order.complete"

	transitioned, err := s.store.MarkCompleted(ctx, orderID, paymentID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to complete order")
	}

	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !transitioned {
		s.logger.Info().
			Str("order_number", order.OrderNumber).
			Str("payment_id", paymentID).
			Msg("duplicate completion ignored")
		return order, nil
	}

	if telemetry.Business != nil {
		telemetry.Business.OrdersCompleted.WithLabelValues(order.PaymentProvider).Inc()
		telemetry.Business.RevenueCollected.WithLabelValues(order.Currency).Add(order.Amount)
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("payment_id", paymentID).
		Msg("order completed")

	s.notifier.OrderCompleted(order.ID)

	return order, nil
}

// FailOrder records a failed payment. The transition is guarded in
// storage like CompleteOrder, so a completion racing the failure event
// is never downgraded.
func (s *OrderService) FailOrder(ctx context.Context, orderID int64, paymentID string) error {
	const op = "order.fail"

	transitioned, err := s.store.MarkFailed(ctx, orderID, paymentID)
	if err != nil {
		return domain.Internal(err, op, "failed to record payment failure")
	}

	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !transitioned {
		s.logger.Warn().
			Str("order_number", order.OrderNumber).
			Str("payment_id", paymentID).
			Str("payment_status", order.PaymentStatus).
			Msg("failure event for order past pending, ignoring")
		return nil
	}

	if telemetry.Business != nil {
		telemetry.Business.PaymentFailed.WithLabelValues(order.PaymentProvider).Inc()
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("payment_id", paymentID).
		Msg("payment failed")

	return nil
}

// GetOrder fetches an order by numeric id or order number.
func (s *OrderService) GetOrder(ctx context.Context, idOrNumber string) (*domain.Order, error) {
	if id, err := strconv.ParseInt(idOrNumber, 10, 64); err == nil {
		return s.store.GetByID(ctx, id)
	}
	return s.store.GetByNumber(ctx, idOrNumber)
}

// SetReportStatus moves the report lifecycle. Marking the report completed
// requires the payment to have completed first; the optional reportURL is
// stored alongside.
func (s *OrderService) SetReportStatus(ctx context.Context, orderID int64, status string, reportURL *string) (*domain.Order, error) {
	const op = "order.status"

	if !domain.ValidReportStatus(status) {
		return nil, domain.Errorf(domain.EINVALID, op, "invalid status: %s", status)
	}

	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if status == domain.ReportStatusCompleted && order.PaymentStatus != domain.PaymentStatusCompleted {
		return nil, domain.Invalid(op, "cannot complete report before payment completes")
	}

	if err := s.store.UpdateReportStatus(ctx, orderID, status, reportURL); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("status", status).
		Msg("report status updated")

	return s.store.GetByID(ctx, orderID)
}

// UpdateOrderFields applies a partial update. Keys outside the allow-list
// are dropped silently; enumerated columns are checked before writing.
func (s *OrderService) UpdateOrderFields(ctx context.Context, orderID int64, fields map[string]interface{}) (*domain.Order, error) {
	const op = "order.update"

	filtered := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if domain.OrderUpdatableFields[k] {
			filtered[k] = v
		}
	}

	if v, ok := filtered["payment_status"]; ok {
		status, _ := v.(string)
		switch status {
		case domain.PaymentStatusPending, domain.PaymentStatusCompleted, domain.PaymentStatusFailed:
		default:
			return nil, domain.Errorf(domain.EINVALID, op, "invalid payment_status: %v", v)
		}
	}
	if v, ok := filtered["amount"]; ok {
		amount, ok := v.(float64)
		if !ok || amount < 0 {
			return nil, domain.Invalid(op, "amount must be a non-negative number")
		}
	}
	if v, ok := filtered["currency"]; ok {
		if cur, _ := v.(string); cur != "" {
			filtered["currency"] = strings.ToUpper(cur)
		}
	}

	if len(filtered) == 0 {
		return s.store.GetByID(ctx, orderID)
	}

	if err := s.store.UpdateFields(ctx, orderID, filtered); err != nil {
		return nil, err
	}

	return s.store.GetByID(ctx, orderID)
}

// DeleteOrder removes an order permanently.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID int64) error {
	if err := s.store.Delete(ctx, orderID); err != nil {
		return err
	}

	if telemetry.Business != nil {
		telemetry.Business.OrdersDeleted.Inc()
	}

	s.logger.Info().Int64("order_id", orderID).Msg("order deleted")
	return nil
}

// ResendConfirmation re-sends the order confirmation to the customer.
// Unlike lifecycle notifications this delivery is synchronous and its
// error surfaces to the caller.
func (s *OrderService) ResendConfirmation(ctx context.Context, orderID int64) error {
	const op = "order.resend"

	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := s.dispatcher.SendTo(ctx, order.CustomerEmail, notify.OrderConfirmation(order)); err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to resend confirmation")
	}

	s.logger.Info().Str("order_number", order.OrderNumber).Msg("confirmation resent")
	return nil
}

// ListOrders returns orders matching the filter, newest first.
func (s *OrderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if filter.Status != "" && !domain.ValidReportStatus(filter.Status) {
		return nil, domain.Errorf(domain.EINVALID, "order.list", "invalid status: %s", filter.Status)
	}
	return s.store.List(ctx, filter)
}

// Stats aggregates completed orders per day over a trailing window.
func (s *OrderService) Stats(ctx context.Context, days int) ([]domain.OrderDayStat, error) {
	if days <= 0 {
		days = defaultStatsDays
	}
	if days > maxStatsDays {
		days = maxStatsDays
	}
	return s.store.StatsByDay(ctx, days)
}

// Counts returns the admin dashboard badge counts.
func (s *OrderService) Counts(ctx context.Context) (*domain.AdminCounts, error) {
	return s.store.Counts(ctx)
}

// Sales lists completed orders, optionally narrowed by free-text search.
func (s *OrderService) Sales(ctx context.Context, search string) ([]domain.Order, error) {
	return s.store.Sales(ctx, search)
}

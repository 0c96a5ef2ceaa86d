package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinsight/vinsight/internal/billing"
	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/email"
	"github.com/vinsight/vinsight/internal/memstore"
	"github.com/vinsight/vinsight/internal/notify"
)

// fakeNotifier records lifecycle notification calls.
type fakeNotifier struct {
	mu        sync.Mutex
	pending   []int64
	completed []int64
	contacts  []int64
	reviews   []int64
}

func (n *fakeNotifier) OrderPending(id int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = append(n.pending, id)
}

func (n *fakeNotifier) OrderCompleted(id int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, id)
}

func (n *fakeNotifier) ContactReceived(id int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.contacts = append(n.contacts, id)
}

func (n *fakeNotifier) ReviewReceived(id int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reviews = append(n.reviews, id)
}

// fakeSender is a scriptable email.Sender.
type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []email.Email
}

func (s *fakeSender) Name() string { return "fake" }

func (s *fakeSender) Send(ctx context.Context, e *email.Email) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, *e)
	return "fake-id", nil
}

func newTestOrderService(store domain.OrderStore, notifier *fakeNotifier, sender *fakeSender, outbox *memstore.Outbox) *OrderService {
	dispatcher := notify.NewDispatcher([]email.Sender{sender}, outbox, "noreply@test.local", "admin@test.local", zerolog.Nop())
	return NewOrderService(store, billing.NewMockProvider(), notifier, dispatcher,
		"http://localhost/success", "http://localhost/cancel", zerolog.Nop())
}

func validCreateParams() domain.CreateOrderParams {
	return domain.CreateOrderParams{
		CustomerEmail:       "buyer@example.com",
		VehicleType:         "car",
		IdentificationType:  "vin",
		IdentificationValue: "1HGCM82633A004352",
		PackageType:         "standard",
		Amount:              60,
	}
}

func TestCreateOrderReportsAllMissingFields(t *testing.T) {
	svc := newTestOrderService(memstore.NewOrderStore(), &fakeNotifier{}, &fakeSender{}, memstore.NewOutbox())

	_, err := svc.CreateOrder(context.Background(), domain.CreateOrderParams{Amount: -1})
	require.Error(t, err)
	require.True(t, domain.IsValidationError(err))

	fields := domain.GetValidationFields(err)
	for _, want := range []string{
		"customer_email", "vehicle_type", "identification_type",
		"identification_value", "package_type", "amount",
	} {
		assert.Contains(t, fields, want)
	}
}

func TestCreateOrderRejectsZeroAmount(t *testing.T) {
	svc := newTestOrderService(memstore.NewOrderStore(), &fakeNotifier{}, &fakeSender{}, memstore.NewOutbox())

	params := validCreateParams()
	params.Amount = 0

	_, err := svc.CreateOrder(context.Background(), params)
	require.Error(t, err)
	require.True(t, domain.IsValidationError(err))
	assert.Contains(t, domain.GetValidationFields(err), "amount")
}

func TestCreateOrderDefaultsAndNotification(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestOrderService(memstore.NewOrderStore(), notifier, &fakeSender{}, memstore.NewOutbox())

	params := validCreateParams()
	params.Currency = "eur"

	order, err := svc.CreateOrder(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, "US", order.CountryCode)
	assert.Equal(t, "EUR", order.Currency)
	assert.Equal(t, "mock", order.PaymentProvider)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, domain.ReportStatusPending, order.Status)
	assert.Regexp(t, `^ORD-\d{8}-\d{5}$`, order.OrderNumber)
	assert.Equal(t, []int64{order.ID}, notifier.pending)
}

func TestCompleteOrderIsIdempotent(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestOrderService(memstore.NewOrderStore(), notifier, &fakeSender{}, memstore.NewOutbox())

	created, err := svc.CreateOrder(context.Background(), validCreateParams())
	require.NoError(t, err)

	first, err := svc.CompleteOrder(context.Background(), created.ID, "pay_123")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, first.PaymentStatus)
	require.NotNil(t, first.PaymentID)
	assert.Equal(t, "pay_123", *first.PaymentID)

	second, err := svc.CompleteOrder(context.Background(), created.ID, "pay_456")
	require.NoError(t, err)
	require.NotNil(t, second.PaymentID)
	assert.Equal(t, "pay_123", *second.PaymentID)

	// Exactly one completion notification despite two confirmations.
	assert.Equal(t, []int64{created.ID}, notifier.completed)
}

func TestCompleteOrderUnknownOrder(t *testing.T) {
	svc := newTestOrderService(memstore.NewOrderStore(), &fakeNotifier{}, &fakeSender{}, memstore.NewOutbox())

	_, err := svc.CompleteOrder(context.Background(), 999, "pay_123")
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestSetReportStatus(t *testing.T) {
	svc := newTestOrderService(memstore.NewOrderStore(), &fakeNotifier{}, &fakeSender{}, memstore.NewOutbox())

	order, err := svc.CreateOrder(context.Background(), validCreateParams())
	require.NoError(t, err)

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := svc.SetReportStatus(context.Background(), order.ID, "shipped", nil)
		require.Error(t, err)
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})

	t.Run("rejects completion before payment", func(t *testing.T) {
		_, err := svc.SetReportStatus(context.Background(), order.ID, domain.ReportStatusCompleted, nil)
		require.Error(t, err)
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})

	t.Run("processing works while unpaid", func(t *testing.T) {
		updated, err := svc.SetReportStatus(context.Background(), order.ID, domain.ReportStatusProcessing, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.ReportStatusProcessing, updated.Status)
	})

	t.Run("completion works after payment", func(t *testing.T) {
		_, err := svc.CompleteOrder(context.Background(), order.ID, "pay_123")
		require.NoError(t, err)

		url := "https://reports.example.com/r/1"
		updated, err := svc.SetReportStatus(context.Background(), order.ID, domain.ReportStatusCompleted, &url)
		require.NoError(t, err)
		assert.Equal(t, domain.ReportStatusCompleted, updated.Status)
		require.NotNil(t, updated.ReportURL)
		assert.Equal(t, url, *updated.ReportURL)
	})
}

func TestUpdateOrderFieldsFiltersAllowList(t *testing.T) {
	svc := newTestOrderService(memstore.NewOrderStore(), &fakeNotifier{}, &fakeSender{}, memstore.NewOutbox())

	order, err := svc.CreateOrder(context.Background(), validCreateParams())
	require.NoError(t, err)

	updated, err := svc.UpdateOrderFields(context.Background(), order.ID, map[string]interface{}{
		"customer_email": "new@example.com",
		"status":         domain.ReportStatusCompleted,
		"evil_field":     "DROP TABLE orders",
	})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", updated.CustomerEmail)
	// status is not in the allow-list and must survive untouched.
	assert.Equal(t, domain.ReportStatusPending, updated.Status)
}

func TestUpdateOrderFieldsValidation(t *testing.T) {
	svc := newTestOrderService(memstore.NewOrderStore(), &fakeNotifier{}, &fakeSender{}, memstore.NewOutbox())

	order, err := svc.CreateOrder(context.Background(), validCreateParams())
	require.NoError(t, err)

	tests := []struct {
		name   string
		fields map[string]interface{}
	}{
		{"bad payment status", map[string]interface{}{"payment_status": "refunded"}},
		{"negative amount", map[string]interface{}{"amount": -5.0}},
		{"non-numeric amount", map[string]interface{}{"amount": "free"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateOrderFields(context.Background(), order.ID, tt.fields)
			require.Error(t, err)
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
		})
	}
}

func TestResendConfirmationPropagatesDeliveryError(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	outbox := memstore.NewOutbox()
	svc := newTestOrderService(memstore.NewOrderStore(), &fakeNotifier{}, sender, outbox)

	order, err := svc.CreateOrder(context.Background(), validCreateParams())
	require.NoError(t, err)

	err = svc.ResendConfirmation(context.Background(), order.ID)
	require.Error(t, err)

	// The failed attempt still lands in the outbox audit.
	entries := outbox.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.OutboxStatusFailed, entries[0].Status)
	assert.Equal(t, order.CustomerEmail, entries[0].ToAddress)
}

func TestFailOrderNeverDowngradesCompleted(t *testing.T) {
	svc := newTestOrderService(memstore.NewOrderStore(), &fakeNotifier{}, &fakeSender{}, memstore.NewOutbox())

	order, err := svc.CreateOrder(context.Background(), validCreateParams())
	require.NoError(t, err)

	_, err = svc.CompleteOrder(context.Background(), order.ID, "pay_123")
	require.NoError(t, err)

	require.NoError(t, svc.FailOrder(context.Background(), order.ID, "pay_123"))

	got, err := svc.GetOrder(context.Background(), fmt.Sprint(order.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, got.PaymentStatus)
}

// completingStore lands a payment confirmation at the worst possible
// instant: immediately before the failure write.
type completingStore struct {
	*memstore.OrderStore
}

func (s *completingStore) MarkFailed(ctx context.Context, id int64, paymentID string) (bool, error) {
	_, _ = s.OrderStore.MarkCompleted(ctx, id, "pay_winner")
	return s.OrderStore.MarkFailed(ctx, id, paymentID)
}

func TestFailOrderLosesRaceAgainstCompletion(t *testing.T) {
	store := &completingStore{OrderStore: memstore.NewOrderStore()}
	svc := newTestOrderService(store, &fakeNotifier{}, &fakeSender{}, memstore.NewOutbox())

	order, err := svc.CreateOrder(context.Background(), validCreateParams())
	require.NoError(t, err)

	require.NoError(t, svc.FailOrder(context.Background(), order.ID, "pay_loser"))

	got, err := store.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, got.PaymentStatus)
	require.NotNil(t, got.PaymentID)
	assert.Equal(t, "pay_winner", *got.PaymentID)
}

func TestGetOrderByNumber(t *testing.T) {
	svc := newTestOrderService(memstore.NewOrderStore(), &fakeNotifier{}, &fakeSender{}, memstore.NewOutbox())

	order, err := svc.CreateOrder(context.Background(), validCreateParams())
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestCreateCheckoutRejectsPaidOrder(t *testing.T) {
	svc := newTestOrderService(memstore.NewOrderStore(), &fakeNotifier{}, &fakeSender{}, memstore.NewOutbox())

	order, err := svc.CreateOrder(context.Background(), validCreateParams())
	require.NoError(t, err)

	checkout, err := svc.CreateCheckout(context.Background(), order.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, checkout.URL)

	_, err = svc.CompleteOrder(context.Background(), order.ID, "pay_123")
	require.NoError(t, err)

	_, err = svc.CreateCheckout(context.Background(), order.ID)
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}

package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/email"
	"github.com/vinsight/vinsight/internal/telemetry"
)

type stubSender struct {
	name string
	err  error
	sent []email.Email
}

func (s *stubSender) Name() string { return s.name }

func (s *stubSender) Send(ctx context.Context, e *email.Email) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, *e)
	return s.name + "-id", nil
}

type memOutbox struct {
	entries []domain.OutboxEntry
}

func (o *memOutbox) Append(ctx context.Context, entry domain.OutboxEntry) error {
	o.entries = append(o.entries, entry)
	return nil
}

func (o *memOutbox) List(ctx context.Context, limit int) ([]domain.OutboxEntry, error) {
	return o.entries, nil
}

func TestDispatcherFirstSenderWins(t *testing.T) {
	primary := &stubSender{name: "primary"}
	fallback := &stubSender{name: "fallback"}
	outbox := &memOutbox{}

	d := NewDispatcher([]email.Sender{primary, fallback}, outbox, "noreply@test.local", "admin@test.local", zerolog.Nop())

	err := d.SendTo(context.Background(), "to@example.com", Message{Subject: "hi", TextBody: "hello"})
	require.NoError(t, err)

	assert.Len(t, primary.sent, 1)
	assert.Empty(t, fallback.sent)

	require.Len(t, outbox.entries, 1)
	assert.Equal(t, domain.OutboxStatusSent, outbox.entries[0].Status)
	assert.Equal(t, "primary", outbox.entries[0].Provider)
}

func TestDispatcherFallsBackAndAuditsBoth(t *testing.T) {
	primary := &stubSender{name: "primary", err: errors.New("connection refused")}
	fallback := &stubSender{name: "fallback"}
	outbox := &memOutbox{}

	d := NewDispatcher([]email.Sender{primary, fallback}, outbox, "noreply@test.local", "admin@test.local", zerolog.Nop())

	err := d.SendTo(context.Background(), "to@example.com", Message{Subject: "hi"})
	require.NoError(t, err)

	assert.Len(t, fallback.sent, 1)

	// Both the failed attempt and the successful one are on record.
	require.Len(t, outbox.entries, 2)
	assert.Equal(t, domain.OutboxStatusFailed, outbox.entries[0].Status)
	assert.Equal(t, domain.OutboxStatusSent, outbox.entries[1].Status)
}

func TestDispatcherAllSendersFail(t *testing.T) {
	outbox := &memOutbox{}
	d := NewDispatcher([]email.Sender{
		&stubSender{name: "a", err: errors.New("down")},
		&stubSender{name: "b", err: errors.New("also down")},
	}, outbox, "noreply@test.local", "admin@test.local", zerolog.Nop())

	err := d.SendTo(context.Background(), "to@example.com", Message{Subject: "hi"})
	require.Error(t, err)
	assert.Len(t, outbox.entries, 2)
}

func TestDispatcherNoSendersQueues(t *testing.T) {
	outbox := &memOutbox{}
	d := NewDispatcher(nil, outbox, "noreply@test.local", "admin@test.local", zerolog.Nop())

	err := d.SendTo(context.Background(), "to@example.com", Message{Subject: "hi"})
	require.Error(t, err)

	require.Len(t, outbox.entries, 1)
	assert.Equal(t, domain.OutboxStatusQueued, outbox.entries[0].Status)
}

func TestDispatcherNoAdminConfigured(t *testing.T) {
	sender := &stubSender{name: "primary"}
	d := NewDispatcher([]email.Sender{sender}, &memOutbox{}, "noreply@test.local", "", zerolog.Nop())

	// Dropped quietly, not an error.
	require.NoError(t, d.SendToAdmin(context.Background(), Message{Subject: "hi"}))
	assert.Empty(t, sender.sent)
}

func TestDispatcherCountsDeliveries(t *testing.T) {
	metrics := telemetry.NewBusinessMetrics("notify_test")
	t.Cleanup(func() { telemetry.Business = nil })

	primary := &stubSender{name: "primary", err: errors.New("down")}
	fallback := &stubSender{name: "fallback"}
	d := NewDispatcher([]email.Sender{primary, fallback}, &memOutbox{}, "noreply@test.local", "admin@test.local", zerolog.Nop())

	require.NoError(t, d.SendTo(context.Background(), "to@example.com", Message{Subject: "hi"}))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EmailFailed.WithLabelValues("primary")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EmailSent.WithLabelValues("fallback")))
}

func TestOrderTemplates(t *testing.T) {
	url := "https://reports.example.com/r/42"
	order := &domain.Order{
		OrderNumber:   "ORD-20260829-00042",
		CustomerEmail: "buyer@example.com",
		PackageType:   "premium",
		Currency:      "USD",
		Amount:        80,
		ReportURL:     &url,
	}

	confirmation := OrderConfirmation(order)
	assert.Contains(t, confirmation.Subject, order.OrderNumber)
	assert.Contains(t, confirmation.HTMLBody, url)

	pending := OrderPendingAdmin(order)
	assert.Contains(t, pending.Subject, order.OrderNumber)
}

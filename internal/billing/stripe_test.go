package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStripeProvider(t *testing.T) *StripeProvider {
	t.Helper()
	p, err := NewStripeProvider("sk_test_123", "")
	require.NoError(t, err)
	return p
}

func TestNewStripeProviderRequiresKey(t *testing.T) {
	_, err := NewStripeProvider("", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestStripeParseWebhookCheckoutCompleted(t *testing.T) {
	p := newTestStripeProvider(t)

	payload := []byte(`{
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_abc",
				"client_reference_id": "order:42",
				"amount_total": 8000,
				"currency": "usd"
			}
		}
	}`)

	event, err := p.ParseWebhook(context.Background(), payload, "")
	require.NoError(t, err)

	assert.Equal(t, EventPaymentSucceeded, event.Type)
	assert.Equal(t, int64(42), event.OrderID)
	assert.Equal(t, "cs_test_abc", event.PaymentID)
	assert.Equal(t, 80.0, event.Amount)
	assert.Equal(t, "USD", event.Currency)
}

func TestStripeParseWebhookMetadataFallback(t *testing.T) {
	p := newTestStripeProvider(t)

	payload := []byte(`{
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_abc",
				"metadata": {"passthrough": "order:13"}
			}
		}
	}`)

	event, err := p.ParseWebhook(context.Background(), payload, "")
	require.NoError(t, err)
	assert.Equal(t, int64(13), event.OrderID)
}

func TestStripeParseWebhookPaymentFailed(t *testing.T) {
	p := newTestStripeProvider(t)

	payload := []byte(`{
		"type": "payment_intent.payment_failed",
		"data": {
			"object": {
				"id": "pi_test_1",
				"metadata": {"passthrough": "order:7"}
			}
		}
	}`)

	event, err := p.ParseWebhook(context.Background(), payload, "")
	require.NoError(t, err)
	assert.Equal(t, EventPaymentFailed, event.Type)
	assert.Equal(t, int64(7), event.OrderID)
	assert.Equal(t, "pi_test_1", event.PaymentID)
}

func TestStripeParseWebhookIgnoresUnknownEvents(t *testing.T) {
	p := newTestStripeProvider(t)

	payload := []byte(`{"type": "customer.created", "data": {"object": {}}}`)

	event, err := p.ParseWebhook(context.Background(), payload, "")
	require.NoError(t, err)
	assert.Equal(t, EventIgnored, event.Type)
	assert.Equal(t, "customer.created", event.ProviderEvent)
}

func TestStripeParseWebhookRejectsGarbage(t *testing.T) {
	p := newTestStripeProvider(t)

	_, err := p.ParseWebhook(context.Background(), []byte("not json"), "")
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestStripeParseWebhookRejectsBadSignature(t *testing.T) {
	p, err := NewStripeProvider("sk_test_123", "whsec_secret")
	require.NoError(t, err)

	_, err = p.ParseWebhook(context.Background(), []byte(`{"type":"checkout.session.completed"}`), "bogus")
	assert.ErrorIs(t, err, ErrInvalidWebhookSignature)
}

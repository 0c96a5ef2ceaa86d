package billing

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// Payment event types normalized across providers.
const (
	EventPaymentSucceeded = "payment_succeeded"
	EventPaymentFailed    = "payment_failed"
	// EventIgnored covers recognized-but-irrelevant provider events. The
	// webhook handler acknowledges these without acting on them.
	EventIgnored = "ignored"
)

// CheckoutParams contains what the processor needs to mint a checkout
// session for one order.
type CheckoutParams struct {
	OrderID       int64
	OrderNumber   string
	Amount        float64
	Currency      string // ISO 4217, e.g. "USD"
	ProductLabel  string
	CustomerEmail string

	// SuccessURL and CancelURL are where the processor redirects the
	// customer after checkout.
	SuccessURL string
	CancelURL  string

	// IdempotencyKey prevents duplicate sessions on retried requests.
	IdempotencyKey string
}

// Checkout is the reference the customer uses to complete payment.
type Checkout struct {
	SessionID string
	URL       string
	Provider  string
}

// PaymentEvent is a provider webhook payload normalized to what the order
// lifecycle controller needs.
type PaymentEvent struct {
	// Type is one of EventPaymentSucceeded, EventPaymentFailed, EventIgnored.
	Type string

	// OrderID is the correlated order, 0 when the payload carried no
	// parseable order reference.
	OrderID int64

	// PaymentID is the processor's payment reference.
	PaymentID string

	Amount   float64
	Currency string

	// ProviderEvent is the raw provider event name, for logging.
	ProviderEvent string
}

// Provider is the payment processor contract. Implementations exist for
// Stripe and Mercado Pago, plus a mock for tests.
type Provider interface {
	// Name identifies the provider ("stripe", "mercadopago").
	Name() string

	// CreateCheckout mints a checkout session embedding the order
	// reference so asynchronous confirmations can be correlated back.
	CreateCheckout(ctx context.Context, params CheckoutParams) (*Checkout, error)

	// SignatureHeader names the HTTP header carrying the provider's
	// webhook signature. Empty when the provider signs nothing.
	SignatureHeader() string

	// ParseWebhook verifies (when a signing secret is configured) and
	// normalizes a raw webhook payload. Unrecognized event types come
	// back as EventIgnored, not as an error.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*PaymentEvent, error)
}

var orderRefPattern = regexp.MustCompile(`order:(\d+)`)

// OrderRef builds the passthrough value correlating a checkout to an order.
func OrderRef(orderID int64) string {
	return fmt.Sprintf("order:%d", orderID)
}

// ParseOrderRef extracts the order id from a passthrough value. Returns
// false when the value carries no parseable order reference.
func ParseOrderRef(s string) (int64, bool) {
	m := orderRefPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

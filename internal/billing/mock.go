package billing

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is an in-memory Provider for tests. Checkout sessions are
// recorded and webhook parsing returns a scripted event.
type MockProvider struct {
	mu sync.Mutex

	// CreateCheckoutErr, when set, is returned from CreateCheckout.
	CreateCheckoutErr error

	// NextEvent, when set, is returned from ParseWebhook.
	NextEvent *PaymentEvent

	// ParseWebhookErr, when set, is returned from ParseWebhook.
	ParseWebhookErr error

	// SignatureHeaderName is returned from SignatureHeader.
	SignatureHeaderName string

	// LastSignature records the signature passed to the latest
	// ParseWebhook call.
	LastSignature string

	// Checkouts records every CreateCheckout call.
	Checkouts []CheckoutParams
}

var _ Provider = (*MockProvider)(nil)

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Name() string { return "mock" }

func (p *MockProvider) SignatureHeader() string { return p.SignatureHeaderName }

func (p *MockProvider) CreateCheckout(ctx context.Context, params CheckoutParams) (*Checkout, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.CreateCheckoutErr != nil {
		return nil, p.CreateCheckoutErr
	}

	p.Checkouts = append(p.Checkouts, params)
	return &Checkout{
		SessionID: fmt.Sprintf("mock_sess_%d", len(p.Checkouts)),
		URL:       fmt.Sprintf("https://checkout.example.com/%s", OrderRef(params.OrderID)),
		Provider:  p.Name(),
	}, nil
}

func (p *MockProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*PaymentEvent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.LastSignature = signature
	if p.ParseWebhookErr != nil {
		return nil, p.ParseWebhookErr
	}
	if p.NextEvent != nil {
		return p.NextEvent, nil
	}
	return &PaymentEvent{Type: EventIgnored}, nil
}

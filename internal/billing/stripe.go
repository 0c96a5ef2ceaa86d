package billing

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeProvider implements Provider using Stripe Checkout sessions.
type StripeProvider struct {
	client        *client.API
	webhookSecret string
}

var _ Provider = (*StripeProvider)(nil)

// NewStripeProvider creates a Stripe provider. webhookSecret may be empty;
// signature verification is then skipped (a documented trust gap for
// deployments that cannot configure signing).
func NewStripeProvider(secretKey, webhookSecret string) (*StripeProvider, error) {
	if secretKey == "" {
		return nil, ErrMissingCredentials
	}

	sc := &client.API{}
	sc.Init(secretKey, nil)

	return &StripeProvider{
		client:        sc,
		webhookSecret: webhookSecret,
	}, nil
}

func (p *StripeProvider) Name() string { return "stripe" }

func (p *StripeProvider) SignatureHeader() string { return "Stripe-Signature" }

func (p *StripeProvider) CreateCheckout(ctx context.Context, params CheckoutParams) (*Checkout, error) {
	ref := OrderRef(params.OrderID)

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(params.SuccessURL),
		CancelURL:         stripe.String(params.CancelURL),
		ClientReferenceID: stripe.String(ref),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(params.Currency)),
					UnitAmount: stripe.Int64(int64(math.Round(params.Amount * 100))),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(params.ProductLabel),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if params.CustomerEmail != "" {
		sessionParams.CustomerEmail = stripe.String(params.CustomerEmail)
	}
	sessionParams.AddMetadata("passthrough", ref)
	sessionParams.AddMetadata("order_number", params.OrderNumber)
	if params.IdempotencyKey != "" {
		sessionParams.SetIdempotencyKey(params.IdempotencyKey)
	}
	sessionParams.Context = ctx

	sess, err := p.client.CheckoutSessions.New(sessionParams)
	if err != nil {
		return nil, gatewayErr("stripe", "failed to create checkout session", err)
	}

	return &Checkout{
		SessionID: sess.ID,
		URL:       sess.URL,
		Provider:  p.Name(),
	}, nil
}

func (p *StripeProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*PaymentEvent, error) {
	var event stripe.Event

	if p.webhookSecret != "" {
		verified, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
		if err != nil {
			return nil, ErrInvalidWebhookSignature
		}
		event = verified
	} else if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ErrMalformedPayload
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, ErrMalformedPayload
		}

		orderID, _ := ParseOrderRef(sess.ClientReferenceID)
		if orderID == 0 {
			orderID, _ = ParseOrderRef(sess.Metadata["passthrough"])
		}

		paymentID := sess.ID
		if sess.PaymentIntent != nil {
			paymentID = sess.PaymentIntent.ID
		}

		return &PaymentEvent{
			Type:          EventPaymentSucceeded,
			OrderID:       orderID,
			PaymentID:     paymentID,
			Amount:        float64(sess.AmountTotal) / 100,
			Currency:      strings.ToUpper(string(sess.Currency)),
			ProviderEvent: string(event.Type),
		}, nil

	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, ErrMalformedPayload
		}

		orderID, _ := ParseOrderRef(pi.Metadata["passthrough"])

		return &PaymentEvent{
			Type:          EventPaymentSucceeded,
			OrderID:       orderID,
			PaymentID:     pi.ID,
			Amount:        float64(pi.Amount) / 100,
			Currency:      strings.ToUpper(string(pi.Currency)),
			ProviderEvent: string(event.Type),
		}, nil

	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, ErrMalformedPayload
		}

		orderID, _ := ParseOrderRef(pi.Metadata["passthrough"])

		return &PaymentEvent{
			Type:          EventPaymentFailed,
			OrderID:       orderID,
			PaymentID:     pi.ID,
			ProviderEvent: string(event.Type),
		}, nil

	default:
		return &PaymentEvent{
			Type:          EventIgnored,
			ProviderEvent: string(event.Type),
		}, nil
	}
}

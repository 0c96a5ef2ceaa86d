package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
)

// MercadoPagoProvider implements Provider using Mercado Pago checkout
// preferences. Webhook notifications carry only a payment id; the payload
// is resolved by fetching the payment and reading its external reference.
type MercadoPagoProvider struct {
	preferences   preference.Client
	payments      payment.Client
	webhookSecret string
}

var _ Provider = (*MercadoPagoProvider)(nil)

// NewMercadoPagoProvider creates a Mercado Pago provider. webhookSecret
// may be empty; x-signature verification is then skipped (a documented
// trust gap for deployments that cannot configure signing).
func NewMercadoPagoProvider(accessToken, webhookSecret string) (*MercadoPagoProvider, error) {
	if accessToken == "" {
		return nil, ErrMissingCredentials
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, gatewayErr("mercadopago", "failed to create sdk config", err)
	}

	return &MercadoPagoProvider{
		preferences:   preference.NewClient(cfg),
		payments:      payment.NewClient(cfg),
		webhookSecret: webhookSecret,
	}, nil
}

func (p *MercadoPagoProvider) Name() string { return "mercadopago" }

func (p *MercadoPagoProvider) SignatureHeader() string { return "X-Signature" }

func (p *MercadoPagoProvider) CreateCheckout(ctx context.Context, params CheckoutParams) (*Checkout, error) {
	req := preference.Request{
		Items: []preference.ItemRequest{
			{
				Title:      params.ProductLabel,
				Quantity:   1,
				UnitPrice:  params.Amount,
				CurrencyID: params.Currency,
			},
		},
		ExternalReference: OrderRef(params.OrderID),
		BackURLs: &preference.BackURLsRequest{
			Success: params.SuccessURL,
			Failure: params.CancelURL,
		},
	}
	if params.CustomerEmail != "" {
		req.Payer = &preference.PayerRequest{Email: params.CustomerEmail}
	}

	resp, err := p.preferences.Create(ctx, req)
	if err != nil {
		return nil, gatewayErr("mercadopago", "failed to create preference", err)
	}

	return &Checkout{
		SessionID: resp.ID,
		URL:       resp.InitPoint,
		Provider:  p.Name(),
	}, nil
}

// mpNotification is the webhook envelope Mercado Pago posts. Only payment
// notifications are actionable; everything else is acknowledged and ignored.
type mpNotification struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (p *MercadoPagoProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*PaymentEvent, error) {
	var note mpNotification
	if err := json.Unmarshal(payload, &note); err != nil {
		return nil, ErrMalformedPayload
	}

	if note.Type != "payment" || note.Data.ID == "" {
		return &PaymentEvent{Type: EventIgnored, ProviderEvent: note.Type}, nil
	}

	paymentID, err := strconv.Atoi(note.Data.ID)
	if err != nil {
		return &PaymentEvent{Type: EventIgnored, ProviderEvent: note.Type}, nil
	}

	if p.webhookSecret != "" {
		if err := p.verifySignature(note.Data.ID, signature); err != nil {
			return nil, err
		}
	}

	pay, err := p.payments.Get(ctx, paymentID)
	if err != nil {
		return nil, gatewayErr("mercadopago", "failed to fetch payment", err)
	}

	orderID, _ := ParseOrderRef(pay.ExternalReference)

	eventType := EventIgnored
	switch pay.Status {
	case "approved":
		eventType = EventPaymentSucceeded
	case "rejected", "cancelled":
		eventType = EventPaymentFailed
	}

	return &PaymentEvent{
		Type:          eventType,
		OrderID:       orderID,
		PaymentID:     note.Data.ID,
		Amount:        pay.TransactionAmount,
		Currency:      pay.CurrencyID,
		ProviderEvent: "payment." + pay.Status,
	}, nil
}

// verifySignature checks the x-signature header, which carries a
// timestamp and an HMAC-SHA256 over "id:<data.id>;ts:<ts>;" keyed with
// the webhook secret.
func (p *MercadoPagoProvider) verifySignature(dataID, signature string) error {
	var ts, v1 string
	for _, part := range strings.Split(signature, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "v1":
			v1 = value
		}
	}
	if ts == "" || v1 == "" {
		return ErrInvalidWebhookSignature
	}

	manifest := fmt.Sprintf("id:%s;ts:%s;", strings.ToLower(dataID), ts)
	mac := hmac.New(sha256.New, []byte(p.webhookSecret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(v1)) {
		return ErrInvalidWebhookSignature
	}
	return nil
}

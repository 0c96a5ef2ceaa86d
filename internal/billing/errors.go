package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials is returned when provider credentials are absent.
	ErrMissingCredentials = errors.New("billing: missing provider credentials")

	// ErrInvalidWebhookSignature is returned when webhook signature verification fails.
	ErrInvalidWebhookSignature = errors.New("billing: invalid webhook signature")

	// ErrMalformedPayload is returned when a webhook body cannot be parsed at all.
	ErrMalformedPayload = errors.New("billing: malformed webhook payload")
)

// GatewayError wraps a processor API failure with provider context.
type GatewayError struct {
	Provider string
	Message  string
	Err      error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func gatewayErr(provider, message string, err error) error {
	return &GatewayError{Provider: provider, Message: message, Err: err}
}

package email

import "context"

// Email is one message to be delivered.
type Email struct {
	To       []string
	From     string
	Subject  string
	TextBody string
	HTMLBody string // optional
}

// Sender delivers emails. Implementations exist for SMTP and the Resend
// HTTP API; the notification dispatcher chains them.
type Sender interface {
	// Send delivers the message and returns the provider's message id or
	// preview reference when one is available.
	Send(ctx context.Context, email *Email) (string, error)

	// Name identifies the delivery mechanism for outbox records.
	Name() string
}

package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/email"
	"github.com/vinsight/vinsight/internal/telemetry"
)

// Dispatcher delivers notifications through a sender chain and records
// every attempt in the email outbox. It never skips the audit write: a
// delivery that fails on every sender still leaves a failed outbox row.
//
// Error policy is the caller's concern. Lifecycle-triggered sends go
// through the Notifier (fire-and-forget); administrator resends call
// SendTo directly and surface the error.
type Dispatcher struct {
	senders    []email.Sender
	outbox     domain.OutboxStore
	from       string
	adminEmail string
	logger     zerolog.Logger
}

// NewDispatcher creates a dispatcher over the given sender chain. Senders
// are tried in order; the first success wins.
func NewDispatcher(senders []email.Sender, outbox domain.OutboxStore, from, adminEmail string, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		senders:    senders,
		outbox:     outbox,
		from:       from,
		adminEmail: adminEmail,
		logger:     logger.With().Str("component", "notify").Logger(),
	}
}

// AdminEmail returns the configured administrator recipient.
func (d *Dispatcher) AdminEmail() string { return d.adminEmail }

// SendTo delivers one message and records the attempt. With no senders
// configured the message is recorded as queued and an error is returned.
func (d *Dispatcher) SendTo(ctx context.Context, to string, msg Message) error {
	if to == "" {
		return fmt.Errorf("notify: empty recipient")
	}

	if len(d.senders) == 0 {
		d.record(ctx, to, msg.Subject, "none", "", domain.OutboxStatusQueued, "no delivery mechanism configured")
		return fmt.Errorf("notify: no delivery mechanism configured")
	}

	var lastErr error
	for _, sender := range d.senders {
		id, err := sender.Send(ctx, &email.Email{
			To:       []string{to},
			From:     d.from,
			Subject:  msg.Subject,
			TextBody: msg.TextBody,
			HTMLBody: msg.HTMLBody,
		})
		if err != nil {
			lastErr = err
			d.logger.Warn().Err(err).
				Str("provider", sender.Name()).
				Str("to", to).
				Str("subject", msg.Subject).
				Msg("delivery attempt failed")
			if telemetry.Business != nil {
				telemetry.Business.EmailFailed.WithLabelValues(sender.Name()).Inc()
			}
			d.record(ctx, to, msg.Subject, sender.Name(), "", domain.OutboxStatusFailed, err.Error())
			continue
		}

		if telemetry.Business != nil {
			telemetry.Business.EmailSent.WithLabelValues(sender.Name()).Inc()
		}
		d.record(ctx, to, msg.Subject, sender.Name(), id, domain.OutboxStatusSent, "")
		return nil
	}

	return fmt.Errorf("notify: all delivery mechanisms failed: %w", lastErr)
}

// SendToAdmin delivers one message to the configured administrator.
func (d *Dispatcher) SendToAdmin(ctx context.Context, msg Message) error {
	if d.adminEmail == "" {
		d.logger.Warn().Str("subject", msg.Subject).Msg("no admin email configured, dropping notification")
		return nil
	}
	return d.SendTo(ctx, d.adminEmail, msg)
}

func (d *Dispatcher) record(ctx context.Context, to, subject, provider, previewID, status, errMsg string) {
	entry := domain.OutboxEntry{
		ToAddress: to,
		Subject:   subject,
		Provider:  provider,
		Status:    status,
	}
	if previewID != "" {
		entry.PreviewURL = &previewID
	}
	if errMsg != "" {
		entry.ErrorMessage = &errMsg
	}

	if err := d.outbox.Append(ctx, entry); err != nil {
		// The audit write must not take the send down with it.
		d.logger.Error().Err(err).Str("to", to).Msg("failed to record outbox entry")
	}
}

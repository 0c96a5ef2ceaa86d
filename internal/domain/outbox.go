package domain

import (
	"context"
	"time"
)

// Outbox entry status values.
const (
	OutboxStatusSent   = "sent"
	OutboxStatusFailed = "failed"
	OutboxStatusQueued = "queued"
)

// OutboxEntry is one attempted email send. The outbox is append-only: rows
// are never mutated or deleted by normal operation.
type OutboxEntry struct {
	ID           int64     `json:"id"`
	ToAddress    string    `json:"to_address"`
	Subject      string    `json:"subject"`
	Provider     string    `json:"provider"`
	PreviewURL   *string   `json:"preview_url,omitempty"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// OutboxStore records email delivery attempts.
type OutboxStore interface {
	Append(ctx context.Context, entry OutboxEntry) error
	List(ctx context.Context, limit int) ([]OutboxEntry, error)
}

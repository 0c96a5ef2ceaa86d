package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Setting is one namespaced JSON configuration blob, keyed by namespace
// (e.g. "admin_email", "admin_reviews", "admin_general").
type Setting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SettingStore is the persistence contract for settings.
type SettingStore interface {
	Get(ctx context.Context, key string) (*Setting, error)
	GetAll(ctx context.Context) ([]Setting, error)
	Upsert(ctx context.Context, key string, value json.RawMessage) error
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vinsight/vinsight/internal/domain"
)

// OutboxStore implements domain.OutboxStore backed by Postgres.
type OutboxStore struct {
	pool *pgxpool.Pool
}

var _ domain.OutboxStore = (*OutboxStore)(nil)

func NewOutboxStore(pool *pgxpool.Pool) *OutboxStore {
	return &OutboxStore{pool: pool}
}

func (s *OutboxStore) Append(ctx context.Context, entry domain.OutboxEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO email_outbox (to_address, subject, provider, preview_url, status, error_message)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ToAddress, entry.Subject, entry.Provider, entry.PreviewURL,
		entry.Status, entry.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to append outbox entry: %w", err)
	}
	return nil
}

func (s *OutboxStore) List(ctx context.Context, limit int) ([]domain.OutboxEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, to_address, subject, provider, preview_url, status, error_message, created_at
		FROM email_outbox
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var entries []domain.OutboxEntry
	for rows.Next() {
		var e domain.OutboxEntry
		if err := rows.Scan(&e.ID, &e.ToAddress, &e.Subject, &e.Provider,
			&e.PreviewURL, &e.Status, &e.ErrorMessage, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vinsight/vinsight/internal/domain"
)

// SettingStore implements domain.SettingStore backed by Postgres.
type SettingStore struct {
	pool *pgxpool.Pool
}

var _ domain.SettingStore = (*SettingStore)(nil)

func NewSettingStore(pool *pgxpool.Pool) *SettingStore {
	return &SettingStore{pool: pool}
}

func (s *SettingStore) Get(ctx context.Context, key string) (*domain.Setting, error) {
	var st domain.Setting
	err := s.pool.QueryRow(ctx,
		`SELECT key, value, updated_at FROM settings WHERE key = $1`, key,
	).Scan(&st.Key, &st.Value, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("setting.get", "setting", key)
		}
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	return &st, nil
}

func (s *SettingStore) GetAll(ctx context.Context) ([]domain.Setting, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	var settings []domain.Setting
	for rows.Next() {
		var st domain.Setting
		if err := rows.Scan(&st.Key, &st.Value, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

func (s *SettingStore) Upsert(ctx context.Context, key string, value json.RawMessage) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vinsight/vinsight/internal/domain"
)

// ContactStore implements domain.ContactStore backed by Postgres.
type ContactStore struct {
	pool *pgxpool.Pool
}

var _ domain.ContactStore = (*ContactStore)(nil)

func NewContactStore(pool *pgxpool.Pool) *ContactStore {
	return &ContactStore{pool: pool}
}

const contactColumns = `id, name, email, subject, message, status, created_at`

func scanContact(row pgx.Row) (*domain.ContactSubmission, error) {
	var c domain.ContactSubmission
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Subject, &c.Message, &c.Status, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ContactStore) Insert(ctx context.Context, params domain.CreateContactParams) (*domain.ContactSubmission, error) {
	contact, err := scanContact(s.pool.QueryRow(ctx, `
		INSERT INTO contact_submissions (name, email, subject, message)
		VALUES ($1, $2, $3, $4)
		RETURNING `+contactColumns,
		params.Name, params.Email, params.Subject, params.Message,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert contact submission: %w", err)
	}
	return contact, nil
}

func (s *ContactStore) GetByID(ctx context.Context, id int64) (*domain.ContactSubmission, error) {
	contact, err := scanContact(s.pool.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contact_submissions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("contact.get", "contact submission", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("failed to get contact submission: %w", err)
	}
	return contact, nil
}

func (s *ContactStore) List(ctx context.Context, status string, limit int) ([]domain.ContactSubmission, error) {
	query := `SELECT ` + contactColumns + ` FROM contact_submissions`
	var args []interface{}
	if status != "" {
		args = append(args, status)
		query += " WHERE status = $1"
	}
	query += " ORDER BY created_at DESC"

	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contact submissions: %w", err)
	}
	defer rows.Close()

	var contacts []domain.ContactSubmission
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact submission: %w", err)
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

func (s *ContactStore) UpdateStatus(ctx context.Context, id int64, status string) error {
	ct, err := s.pool.Exec(ctx,
		`UPDATE contact_submissions SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update contact submission: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("contact.update", "contact submission", fmt.Sprintf("%d", id))
	}
	return nil
}

func (s *ContactStore) Delete(ctx context.Context, id int64) error {
	ct, err := s.pool.Exec(ctx, `DELETE FROM contact_submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact submission: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("contact.delete", "contact submission", fmt.Sprintf("%d", id))
	}
	return nil
}

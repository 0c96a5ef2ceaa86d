package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vinsight/vinsight/internal/domain"
)

// ReviewStore implements domain.ReviewStore backed by Postgres.
type ReviewStore struct {
	pool *pgxpool.Pool
}

var _ domain.ReviewStore = (*ReviewStore)(nil)

func NewReviewStore(pool *pgxpool.Pool) *ReviewStore {
	return &ReviewStore{pool: pool}
}

const reviewColumns = `id, name, email, rating, title, body, status, featured, created_at`

func scanReview(row pgx.Row) (*domain.Review, error) {
	var r domain.Review
	err := row.Scan(&r.ID, &r.Name, &r.Email, &r.Rating, &r.Title, &r.Body,
		&r.Status, &r.Featured, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *ReviewStore) Insert(ctx context.Context, params domain.CreateReviewParams) (*domain.Review, error) {
	review, err := scanReview(s.pool.QueryRow(ctx, `
		INSERT INTO reviews (name, email, rating, title, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+reviewColumns,
		params.Name, params.Email, params.Rating, params.Title, params.Body,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert review: %w", err)
	}
	return review, nil
}

func (s *ReviewStore) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	review, err := scanReview(s.pool.QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("review.get", "review", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

func (s *ReviewStore) List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	var conds []string
	var args []interface{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.MinRating > 0 {
		args = append(args, filter.MinRating)
		conds = append(conds, fmt.Sprintf("rating >= $%d", len(args)))
	}
	if filter.Featured != nil {
		args = append(args, *filter.Featured)
		conds = append(conds, fmt.Sprintf("featured = $%d", len(args)))
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, *r)
	}
	return reviews, rows.Err()
}

func (s *ReviewStore) UpdateStatus(ctx context.Context, id int64, status string) error {
	ct, err := s.pool.Exec(ctx,
		`UPDATE reviews SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update review status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("review.update", "review", fmt.Sprintf("%d", id))
	}
	return nil
}

func (s *ReviewStore) SetFeatured(ctx context.Context, id int64, featured bool) error {
	ct, err := s.pool.Exec(ctx,
		`UPDATE reviews SET featured = $2 WHERE id = $1`, id, featured)
	if err != nil {
		return fmt.Errorf("failed to update review featured flag: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("review.update", "review", fmt.Sprintf("%d", id))
	}
	return nil
}

func (s *ReviewStore) Delete(ctx context.Context, id int64) error {
	ct, err := s.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("review.delete", "review", fmt.Sprintf("%d", id))
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinsight/vinsight/internal/domain"
)

type fakeReviewStore struct {
	nextID  int64
	reviews map[int64]*domain.Review
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{reviews: make(map[int64]*domain.Review)}
}

func (s *fakeReviewStore) Insert(ctx context.Context, params domain.CreateReviewParams) (*domain.Review, error) {
	s.nextID++
	review := &domain.Review{
		ID:        s.nextID,
		Name:      params.Name,
		Email:     params.Email,
		Rating:    params.Rating,
		Title:     params.Title,
		Body:      params.Body,
		Status:    domain.ReviewStatusPending,
		CreatedAt: time.Now(),
	}
	s.reviews[review.ID] = review
	c := *review
	return &c, nil
}

func (s *fakeReviewStore) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	review, ok := s.reviews[id]
	if !ok {
		return nil, domain.NotFound("review.get", "review", fmt.Sprint(id))
	}
	c := *review
	return &c, nil
}

func (s *fakeReviewStore) List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	var out []domain.Review
	for _, review := range s.reviews {
		if filter.Status != "" && review.Status != filter.Status {
			continue
		}
		out = append(out, *review)
	}
	return out, nil
}

func (s *fakeReviewStore) UpdateStatus(ctx context.Context, id int64, status string) error {
	review, ok := s.reviews[id]
	if !ok {
		return domain.NotFound("review.moderate", "review", fmt.Sprint(id))
	}
	review.Status = status
	return nil
}

func (s *fakeReviewStore) SetFeatured(ctx context.Context, id int64, featured bool) error {
	review, ok := s.reviews[id]
	if !ok {
		return domain.NotFound("review.feature", "review", fmt.Sprint(id))
	}
	review.Featured = featured
	return nil
}

func (s *fakeReviewStore) Delete(ctx context.Context, id int64) error {
	delete(s.reviews, id)
	return nil
}

func TestReviewSubmitValidation(t *testing.T) {
	svc := NewReviewService(newFakeReviewStore(), &fakeNotifier{}, zerolog.Nop())

	_, err := svc.Submit(context.Background(), domain.CreateReviewParams{Rating: 9})
	require.Error(t, err)
	require.True(t, domain.IsValidationError(err))

	fields := domain.GetValidationFields(err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "body")
	assert.Contains(t, fields, "rating")
}

func TestReviewLifecycle(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := NewReviewService(newFakeReviewStore(), notifier, zerolog.Nop())
	ctx := context.Background()

	review, err := svc.Submit(ctx, domain.CreateReviewParams{
		Name:   "Dana",
		Rating: 5,
		Body:   "Fast and thorough report.",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStatusPending, review.Status)
	assert.Equal(t, []int64{review.ID}, notifier.reviews)

	// Pending reviews cannot be featured.
	_, err = svc.SetFeatured(ctx, review.ID, true)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	approved, err := svc.Moderate(ctx, review.ID, domain.ReviewStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStatusApproved, approved.Status)

	featured, err := svc.SetFeatured(ctx, review.ID, true)
	require.NoError(t, err)
	assert.True(t, featured.Featured)

	_, err = svc.Moderate(ctx, review.ID, "archived")
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestReviewListPublicOnlyApproved(t *testing.T) {
	store := newFakeReviewStore()
	svc := NewReviewService(store, &fakeNotifier{}, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.Submit(ctx, domain.CreateReviewParams{Name: "A", Rating: 4, Body: "ok"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, domain.CreateReviewParams{Name: "B", Rating: 2, Body: "meh"})
	require.NoError(t, err)

	_, err = svc.Moderate(ctx, first.ID, domain.ReviewStatusApproved)
	require.NoError(t, err)

	public, err := svc.ListPublic(ctx, 0)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, first.ID, public[0].ID)
}

package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/notify"
)

// ReviewService handles public review submission and admin moderation.
type ReviewService struct {
	store    domain.ReviewStore
	notifier notify.Notifier
	logger   zerolog.Logger
}

// NewReviewService creates the review service.
func NewReviewService(store domain.ReviewStore, notifier notify.Notifier, logger zerolog.Logger) *ReviewService {
	return &ReviewService{
		store:    store,
		notifier: notifier,
		logger:   logger.With().Str("component", "service.review").Logger(),
	}
}

// Submit accepts a public review. New reviews always start pending; the
// admin alert is fire-and-forget.
func (s *ReviewService) Submit(ctx context.Context, params domain.CreateReviewParams) (*domain.Review, error) {
	var verr error
	if strings.TrimSpace(params.Name) == "" {
		verr = domain.AddFieldError(verr, "name", "name is required")
	}
	if strings.TrimSpace(params.Body) == "" {
		verr = domain.AddFieldError(verr, "body", "review body is required")
	}
	if params.Rating < 1 || params.Rating > 5 {
		verr = domain.AddFieldError(verr, "rating", "rating must be between 1 and 5")
	}
	if verr != nil {
		return nil, verr
	}

	review, err := s.store.Insert(ctx, params)
	if err != nil {
		return nil, domain.Internal(err, "review.submit", "failed to save review")
	}

	s.logger.Info().Int64("review_id", review.ID).Int("rating", review.Rating).Msg("review submitted")
	s.notifier.ReviewReceived(review.ID)

	return review, nil
}

// ListPublic returns approved reviews for the storefront.
func (s *ReviewService) ListPublic(ctx context.Context, limit int) ([]domain.Review, error) {
	return s.store.List(ctx, domain.ReviewFilter{
		Status: domain.ReviewStatusApproved,
		Limit:  limit,
	})
}

// List returns reviews for moderation, optionally filtered by status.
func (s *ReviewService) List(ctx context.Context, status string, limit int) ([]domain.Review, error) {
	if status != "" {
		switch status {
		case domain.ReviewStatusPending, domain.ReviewStatusApproved, domain.ReviewStatusRejected:
		default:
			return nil, domain.Errorf(domain.EINVALID, "review.list", "invalid status: %s", status)
		}
	}
	return s.store.List(ctx, domain.ReviewFilter{Status: status, Limit: limit})
}

// Moderate sets a review's moderation status.
func (s *ReviewService) Moderate(ctx context.Context, id int64, status string) (*domain.Review, error) {
	const op = "review.moderate"

	switch status {
	case domain.ReviewStatusPending, domain.ReviewStatusApproved, domain.ReviewStatusRejected:
	default:
		return nil, domain.Errorf(domain.EINVALID, op, "invalid status: %s", status)
	}

	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("review_id", id).Str("status", status).Msg("review moderated")
	return s.store.GetByID(ctx, id)
}

// SetFeatured toggles the storefront featured flag. Only approved reviews
// may be featured.
func (s *ReviewService) SetFeatured(ctx context.Context, id int64, featured bool) (*domain.Review, error) {
	const op = "review.feature"

	review, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if featured && review.Status != domain.ReviewStatusApproved {
		return nil, domain.Invalid(op, "only approved reviews can be featured")
	}

	if err := s.store.SetFeatured(ctx, id, featured); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, id)
}

// Delete removes a review permanently.
func (s *ReviewService) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

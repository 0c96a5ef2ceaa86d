package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/notify"
)

// ContactService handles the public contact form and admin triage.
type ContactService struct {
	store    domain.ContactStore
	notifier notify.Notifier
	logger   zerolog.Logger
}

// NewContactService creates the contact service.
func NewContactService(store domain.ContactStore, notifier notify.Notifier, logger zerolog.Logger) *ContactService {
	return &ContactService{
		store:    store,
		notifier: notifier,
		logger:   logger.With().Str("component", "service.contact").Logger(),
	}
}

// Submit accepts a public contact form submission and alerts the
// administrator best-effort.
func (s *ContactService) Submit(ctx context.Context, params domain.CreateContactParams) (*domain.ContactSubmission, error) {
	var verr error
	if strings.TrimSpace(params.Name) == "" {
		verr = domain.AddFieldError(verr, "name", "name is required")
	}
	if strings.TrimSpace(params.Email) == "" {
		verr = domain.AddFieldError(verr, "email", "email is required")
	}
	if strings.TrimSpace(params.Message) == "" {
		verr = domain.AddFieldError(verr, "message", "message is required")
	}
	if verr != nil {
		return nil, verr
	}

	contact, err := s.store.Insert(ctx, params)
	if err != nil {
		return nil, domain.Internal(err, "contact.submit", "failed to save submission")
	}

	s.logger.Info().Int64("contact_id", contact.ID).Msg("contact submission received")
	s.notifier.ContactReceived(contact.ID)

	return contact, nil
}

// List returns submissions for triage, optionally filtered by status.
func (s *ContactService) List(ctx context.Context, status string, limit int) ([]domain.ContactSubmission, error) {
	if status != "" {
		switch status {
		case domain.ContactStatusNew, domain.ContactStatusRead, domain.ContactStatusResponded:
		default:
			return nil, domain.Errorf(domain.EINVALID, "contact.list", "invalid status: %s", status)
		}
	}
	return s.store.List(ctx, status, limit)
}

// SetStatus moves a submission through the triage lifecycle.
func (s *ContactService) SetStatus(ctx context.Context, id int64, status string) (*domain.ContactSubmission, error) {
	const op = "contact.status"

	switch status {
	case domain.ContactStatusNew, domain.ContactStatusRead, domain.ContactStatusResponded:
	default:
		return nil, domain.Errorf(domain.EINVALID, op, "invalid status: %s", status)
	}

	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, id)
}

// Delete removes a submission permanently.
func (s *ContactService) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

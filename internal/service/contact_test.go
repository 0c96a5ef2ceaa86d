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

type fakeContactStore struct {
	nextID   int64
	contacts map[int64]*domain.ContactSubmission
}

func newFakeContactStore() *fakeContactStore {
	return &fakeContactStore{contacts: make(map[int64]*domain.ContactSubmission)}
}

func (s *fakeContactStore) Insert(ctx context.Context, params domain.CreateContactParams) (*domain.ContactSubmission, error) {
	s.nextID++
	contact := &domain.ContactSubmission{
		ID:        s.nextID,
		Name:      params.Name,
		Email:     params.Email,
		Subject:   params.Subject,
		Message:   params.Message,
		Status:    domain.ContactStatusNew,
		CreatedAt: time.Now(),
	}
	s.contacts[contact.ID] = contact
	c := *contact
	return &c, nil
}

func (s *fakeContactStore) GetByID(ctx context.Context, id int64) (*domain.ContactSubmission, error) {
	contact, ok := s.contacts[id]
	if !ok {
		return nil, domain.NotFound("contact.get", "submission", fmt.Sprint(id))
	}
	c := *contact
	return &c, nil
}

func (s *fakeContactStore) List(ctx context.Context, status string, limit int) ([]domain.ContactSubmission, error) {
	var out []domain.ContactSubmission
	for _, contact := range s.contacts {
		if status != "" && contact.Status != status {
			continue
		}
		out = append(out, *contact)
	}
	return out, nil
}

func (s *fakeContactStore) UpdateStatus(ctx context.Context, id int64, status string) error {
	contact, ok := s.contacts[id]
	if !ok {
		return domain.NotFound("contact.status", "submission", fmt.Sprint(id))
	}
	contact.Status = status
	return nil
}

func (s *fakeContactStore) Delete(ctx context.Context, id int64) error {
	delete(s.contacts, id)
	return nil
}

func TestContactSubmitValidation(t *testing.T) {
	svc := NewContactService(newFakeContactStore(), &fakeNotifier{}, zerolog.Nop())

	_, err := svc.Submit(context.Background(), domain.CreateContactParams{})
	require.Error(t, err)
	require.True(t, domain.IsValidationError(err))

	fields := domain.GetValidationFields(err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "message")
}

func TestContactTriage(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := NewContactService(newFakeContactStore(), notifier, zerolog.Nop())
	ctx := context.Background()

	contact, err := svc.Submit(ctx, domain.CreateContactParams{
		Name:    "Sam",
		Email:   "sam@example.com",
		Message: "Where is my report?",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ContactStatusNew, contact.Status)
	assert.Equal(t, []int64{contact.ID}, notifier.contacts)

	read, err := svc.SetStatus(ctx, contact.ID, domain.ContactStatusRead)
	require.NoError(t, err)
	assert.Equal(t, domain.ContactStatusRead, read.Status)

	_, err = svc.SetStatus(ctx, contact.ID, "spam")
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

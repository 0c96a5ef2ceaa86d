package domain

import (
	"context"
	"time"
)

// Contact submission status values.
const (
	ContactStatusNew       = "new"
	ContactStatusRead      = "read"
	ContactStatusResponded = "responded"
)

// ContactSubmission is a message received through the public contact form.
type ContactSubmission struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateContactParams holds the public form fields.
type CreateContactParams struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// ContactStore is the persistence contract for contact submissions.
type ContactStore interface {
	Insert(ctx context.Context, params CreateContactParams) (*ContactSubmission, error)
	GetByID(ctx context.Context, id int64) (*ContactSubmission, error)
	List(ctx context.Context, status string, limit int) ([]ContactSubmission, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

package domain

import (
	"context"
	"time"
)

// Review moderation status values.
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// Review is a customer-submitted product review awaiting moderation.
type Review struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	Featured  bool      `json:"featured"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateReviewParams holds the public submission fields.
type CreateReviewParams struct {
	Name   string
	Email  string
	Rating int
	Title  string
	Body   string
}

// ReviewFilter narrows review listings.
type ReviewFilter struct {
	Status    string
	MinRating int
	Featured  *bool
	Limit     int
}

// ReviewStore is the persistence contract for reviews.
type ReviewStore interface {
	Insert(ctx context.Context, params CreateReviewParams) (*Review, error)
	GetByID(ctx context.Context, id int64) (*Review, error)
	List(ctx context.Context, filter ReviewFilter) ([]Review, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	SetFeatured(ctx context.Context, id int64, featured bool) error
	Delete(ctx context.Context, id int64) error
}

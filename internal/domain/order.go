package domain

import (
	"context"
	"time"
)

// Payment status values. Transitions are forward-only: pending may move to
// completed or failed, and nothing moves away from completed.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Report lifecycle status values. Independent of payment status.
const (
	ReportStatusPending    = "pending"
	ReportStatusProcessing = "processing"
	ReportStatusCompleted  = "completed"
	ReportStatusCancelled  = "cancelled"
	ReportStatusRefunded   = "refunded"
)

// ValidReportStatus reports whether s is a member of the report status enumeration.
func ValidReportStatus(s string) bool {
	switch s {
	case ReportStatusPending, ReportStatusProcessing, ReportStatusCompleted,
		ReportStatusCancelled, ReportStatusRefunded:
		return true
	}
	return false
}

// Order is a single customer purchase request for a vehicle history report.
type Order struct {
	ID                  int64      `json:"id"`
	OrderNumber         string     `json:"order_number"`
	CustomerEmail       string     `json:"customer_email"`
	VehicleType         string     `json:"vehicle_type"`
	IdentificationType  string     `json:"identification_type"`
	IdentificationValue string     `json:"identification_value"`
	VinNumber           *string    `json:"vin_number,omitempty"`
	PackageType         string     `json:"package_type"`
	CountryCode         string     `json:"country_code"`
	Currency            string     `json:"currency"`
	Amount              float64    `json:"amount"`
	PaymentStatus       string     `json:"payment_status"`
	PaymentProvider     string     `json:"payment_provider"`
	PaymentID           *string    `json:"payment_id,omitempty"`
	Status              string     `json:"status"`
	ReportURL           *string    `json:"report_url,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
}

// CreateOrderParams holds the caller-supplied fields for a new order.
// Optional fields fall back to storage defaults (country US, currency USD,
// provider stripe).
type CreateOrderParams struct {
	CustomerEmail       string
	VehicleType         string
	IdentificationType  string
	IdentificationValue string
	VinNumber           *string
	PackageType         string
	CountryCode         string
	Currency            string
	Amount              float64
	PaymentProvider     string
}

// OrderFilter narrows ListOrders results. All supplied filters apply with
// AND semantics. Search matches order number, customer email, identification
// value, VIN and package type case-insensitively.
type OrderFilter struct {
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	Currency  string
	Limit     int
	Offset    int
}

// OrderDayStat is one day of completed-order aggregates.
type OrderDayStat struct {
	Day         time.Time `json:"day"`
	Count       int64     `json:"count"`
	TotalAmount float64   `json:"total_amount"`
}

// AdminCounts summarizes items awaiting administrator attention.
type AdminCounts struct {
	OpenOrders     int64 `json:"open_orders"`
	PendingReviews int64 `json:"pending_reviews"`
	NewContacts    int64 `json:"new_contacts"`
}

// OrderUpdatableFields is the allow-list for partial order updates. Keys
// outside this set are silently dropped, never written.
var OrderUpdatableFields = map[string]bool{
	"customer_email": true,
	"vehicle_type":   true,
	"package_type":   true,
	"vin_number":     true,
	"country_code":   true,
	"currency":       true,
	"amount":         true,
	"report_url":     true,
	"payment_status": true,
}

// OrderStore is the persistence contract for orders. The lifecycle
// controller is the only caller that writes through it.
type OrderStore interface {
	// Insert persists a new order with payment_status=pending and
	// status=pending, assigning the order number inside the same
	// transaction as the insert.
	Insert(ctx context.Context, params CreateOrderParams) (*Order, error)

	// GetByID fetches an order by surrogate id.
	GetByID(ctx context.Context, id int64) (*Order, error)

	// GetByNumber fetches an order by its human-readable order number.
	GetByNumber(ctx context.Context, orderNumber string) (*Order, error)

	// MarkCompleted performs the guarded pending->completed transition:
	// it sets payment_status=completed, payment_id and completed_at only
	// where payment_status is still pending. Returns true when this call
	// performed the transition, false when the order was already past
	// pending (the idempotent no-op case).
	MarkCompleted(ctx context.Context, id int64, paymentID string) (bool, error)

	// MarkFailed performs the guarded pending->failed transition. Like
	// MarkCompleted it only writes where payment_status is still pending,
	// so a completion landing concurrently is never overwritten. Returns
	// true when this call performed the transition.
	MarkFailed(ctx context.Context, id int64, paymentID string) (bool, error)

	// UpdateReportStatus sets the report lifecycle status and optional
	// report URL, stamping completed_at when the status is completed.
	UpdateReportStatus(ctx context.Context, id int64, status string, reportURL *string) error

	// UpdateFields applies an already-filtered partial update. Callers
	// must restrict keys to OrderUpdatableFields before calling.
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error

	// Delete removes an order permanently.
	Delete(ctx context.Context, id int64) error

	// List returns orders matching the filter, newest first.
	List(ctx context.Context, filter OrderFilter) ([]Order, error)

	// StatsByDay aggregates completed orders per day over a trailing window.
	StatsByDay(ctx context.Context, days int) ([]OrderDayStat, error)

	// Counts returns the admin dashboard badge counts.
	Counts(ctx context.Context) (*AdminCounts, error)

	// Sales lists completed orders, optionally narrowed by free-text search.
	Sales(ctx context.Context, search string) ([]Order, error)
}

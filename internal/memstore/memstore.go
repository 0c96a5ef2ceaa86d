// Package memstore provides in-memory store implementations for tests,
// mirroring the transition semantics of the postgres stores.
package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vinsight/vinsight/internal/domain"
)

// OrderStore is an in-memory domain.OrderStore.
type OrderStore struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*domain.Order
}

var _ domain.OrderStore = (*OrderStore)(nil)

// NewOrderStore creates an empty in-memory order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[int64]*domain.Order)}
}

func (s *OrderStore) Insert(ctx context.Context, params domain.CreateOrderParams) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := time.Now()
	order := &domain.Order{
		ID:                  s.nextID,
		OrderNumber:         fmt.Sprintf("ORD-%s-%05d", now.UTC().Format("20060102"), s.nextID),
		CustomerEmail:       params.CustomerEmail,
		VehicleType:         params.VehicleType,
		IdentificationType:  params.IdentificationType,
		IdentificationValue: params.IdentificationValue,
		VinNumber:           params.VinNumber,
		PackageType:         params.PackageType,
		CountryCode:         params.CountryCode,
		Currency:            params.Currency,
		Amount:              params.Amount,
		PaymentStatus:       domain.PaymentStatusPending,
		PaymentProvider:     params.PaymentProvider,
		Status:              domain.ReportStatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	s.orders[order.ID] = order
	return copyOrder(order), nil
}

func (s *OrderStore) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, domain.NotFound("order.get", "order", fmt.Sprint(id))
	}
	return copyOrder(order), nil
}

func (s *OrderStore) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, order := range s.orders {
		if order.OrderNumber == orderNumber {
			return copyOrder(order), nil
		}
	}
	return nil, domain.NotFound("order.get", "order", orderNumber)
}

func (s *OrderStore) MarkCompleted(ctx context.Context, id int64, paymentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok || order.PaymentStatus != domain.PaymentStatusPending {
		return false, nil
	}

	now := time.Now()
	order.PaymentStatus = domain.PaymentStatusCompleted
	order.PaymentID = &paymentID
	order.CompletedAt = &now
	order.UpdatedAt = now
	return true, nil
}

func (s *OrderStore) MarkFailed(ctx context.Context, id int64, paymentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok || order.PaymentStatus != domain.PaymentStatusPending {
		return false, nil
	}

	order.PaymentStatus = domain.PaymentStatusFailed
	order.PaymentID = &paymentID
	order.UpdatedAt = time.Now()
	return true, nil
}

func (s *OrderStore) UpdateReportStatus(ctx context.Context, id int64, status string, reportURL *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return domain.NotFound("order.status", "order", fmt.Sprint(id))
	}
	order.Status = status
	if reportURL != nil {
		order.ReportURL = reportURL
	}
	if status == domain.ReportStatusCompleted && order.CompletedAt == nil {
		now := time.Now()
		order.CompletedAt = &now
	}
	order.UpdatedAt = time.Now()
	return nil
}

func (s *OrderStore) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return domain.NotFound("order.update", "order", fmt.Sprint(id))
	}

	for k, v := range fields {
		switch k {
		case "customer_email":
			order.CustomerEmail, _ = v.(string)
		case "vehicle_type":
			order.VehicleType, _ = v.(string)
		case "package_type":
			order.PackageType, _ = v.(string)
		case "country_code":
			order.CountryCode, _ = v.(string)
		case "payment_status":
			order.PaymentStatus, _ = v.(string)
		case "amount":
			order.Amount, _ = v.(float64)
		case "currency":
			order.Currency, _ = v.(string)
		case "vin_number":
			if vin, ok := v.(string); ok {
				order.VinNumber = &vin
			}
		case "report_url":
			if url, ok := v.(string); ok {
				order.ReportURL = &url
			}
		}
	}
	order.UpdatedAt = time.Now()
	return nil
}

func (s *OrderStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return domain.NotFound("order.delete", "order", fmt.Sprint(id))
	}
	delete(s.orders, id)
	return nil
}

func (s *OrderStore) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Order
	for _, order := range s.orders {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.Currency != "" && order.Currency != filter.Currency {
			continue
		}
		if filter.StartDate != nil && order.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && order.CreatedAt.After(*filter.EndDate) {
			continue
		}
		if filter.Search != "" && !matchesSearch(order, filter.Search) {
			continue
		}
		out = append(out, *copyOrder(order))
	}
	return out, nil
}

func matchesSearch(order *domain.Order, search string) bool {
	needle := strings.ToLower(search)
	for _, hay := range []string{
		order.OrderNumber, order.CustomerEmail,
		order.IdentificationValue, order.PackageType,
	} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func (s *OrderStore) StatsByDay(ctx context.Context, days int) ([]domain.OrderDayStat, error) {
	return nil, nil
}

func (s *OrderStore) Counts(ctx context.Context) (*domain.AdminCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := &domain.AdminCounts{}
	for _, order := range s.orders {
		if order.Status != domain.ReportStatusCompleted {
			counts.OpenOrders++
		}
	}
	return counts, nil
}

func (s *OrderStore) Sales(ctx context.Context, search string) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Order
	for _, order := range s.orders {
		if order.PaymentStatus == domain.PaymentStatusCompleted {
			out = append(out, *copyOrder(order))
		}
	}
	return out, nil
}

func copyOrder(o *domain.Order) *domain.Order {
	c := *o
	return &c
}

// Outbox is an in-memory domain.OutboxStore.
type Outbox struct {
	mu      sync.Mutex
	entries []domain.OutboxEntry
}

var _ domain.OutboxStore = (*Outbox)(nil)

// NewOutbox creates an empty in-memory outbox.
func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Append(ctx context.Context, entry domain.OutboxEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	entry.ID = int64(len(o.entries) + 1)
	entry.CreatedAt = time.Now()
	o.entries = append(o.entries, entry)
	return nil
}

func (o *Outbox) List(ctx context.Context, limit int) ([]domain.OutboxEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.OutboxEntry(nil), o.entries...), nil
}

// Entries returns a snapshot of everything appended so far.
func (o *Outbox) Entries() []domain.OutboxEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.OutboxEntry(nil), o.entries...)
}

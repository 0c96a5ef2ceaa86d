package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vinsight/vinsight/internal/domain"
)

// OrderStore implements domain.OrderStore backed by Postgres.
type OrderStore struct {
	pool *pgxpool.Pool
}

var _ domain.OrderStore = (*OrderStore)(nil)

// NewOrderStore creates a Postgres-backed order store.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

const orderColumns = `id, order_number, customer_email, vehicle_type,
	identification_type, identification_value, vin_number, package_type,
	country_code, currency, amount, payment_status, payment_provider,
	payment_id, status, report_url, created_at, updated_at, completed_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerEmail, &o.VehicleType,
		&o.IdentificationType, &o.IdentificationValue, &o.VinNumber, &o.PackageType,
		&o.CountryCode, &o.Currency, &o.Amount, &o.PaymentStatus, &o.PaymentProvider,
		&o.PaymentID, &o.Status, &o.ReportURL, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Insert persists a new order and assigns its order number in the same
// transaction, so a partially-numbered order is never visible.
func (s *OrderStore) Insert(ctx context.Context, params domain.CreateOrderParams) (*domain.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	country := params.CountryCode
	if country == "" {
		country = "US"
	}
	currency := params.Currency
	if currency == "" {
		currency = "USD"
	}
	provider := params.PaymentProvider
	if provider == "" {
		provider = "stripe"
	}

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (
			customer_email, vehicle_type, identification_type, identification_value,
			vin_number, package_type, country_code, currency, amount, payment_provider
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		params.CustomerEmail, params.VehicleType, params.IdentificationType,
		params.IdentificationValue, params.VinNumber, params.PackageType,
		country, currency, params.Amount, provider,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	orderNumber := fmt.Sprintf("ORD-%s-%05d", time.Now().UTC().Format("20060102"), id)

	order, err := scanOrder(tx.QueryRow(ctx, `
		UPDATE orders SET order_number = $2 WHERE id = $1
		RETURNING `+orderColumns,
		id, orderNumber,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to assign order number: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order insert: %w", err)
	}

	return order, nil
}

func (s *OrderStore) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := scanOrder(s.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("order.get", "order", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (s *OrderStore) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	order, err := scanOrder(s.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, orderNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("order.get", "order", orderNumber)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// MarkCompleted is the guarded pending->completed transition. Only the
// first caller observes a row change; later callers (webhook retries, the
// client callback racing the webhook) see false.
func (s *OrderStore) MarkCompleted(ctx context.Context, id int64, paymentID string) (bool, error) {
	ct, err := s.pool.Exec(ctx, `
		UPDATE orders
		SET payment_status = 'completed',
		    payment_id = $2,
		    completed_at = now(),
		    updated_at = now()
		WHERE id = $1 AND payment_status = 'pending'`,
		id, paymentID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to complete order: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

// MarkFailed is the guarded pending->failed counterpart. The condition
// keeps a failure event that loses a race against completion from
// downgrading the order.
func (s *OrderStore) MarkFailed(ctx context.Context, id int64, paymentID string) (bool, error) {
	ct, err := s.pool.Exec(ctx, `
		UPDATE orders
		SET payment_status = 'failed',
		    payment_id = $2,
		    updated_at = now()
		WHERE id = $1 AND payment_status = 'pending'`,
		id, paymentID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark order failed: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (s *OrderStore) UpdateReportStatus(ctx context.Context, id int64, status string, reportURL *string) error {
	ct, err := s.pool.Exec(ctx, `
		UPDATE orders
		SET status = $2,
		    report_url = COALESCE($3, report_url),
		    completed_at = CASE WHEN $2 = 'completed' THEN now() ELSE completed_at END,
		    updated_at = now()
		WHERE id = $1`,
		id, status, reportURL,
	)
	if err != nil {
		return fmt.Errorf("failed to update report status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("order.status", "order", fmt.Sprintf("%d", id))
	}
	return nil
}

// UpdateFields applies a partial update. Keys are assumed already filtered
// against domain.OrderUpdatableFields; they are iterated in sorted order so
// the generated statement is deterministic.
func (s *OrderStore) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sets []string
	args := []interface{}{id}
	for _, k := range keys {
		args = append(args, fields[k])
		sets = append(sets, fmt.Sprintf("%s = $%d", k, len(args)))
	}
	sets = append(sets, "updated_at = now()")

	query := fmt.Sprintf("UPDATE orders SET %s WHERE id = $1", strings.Join(sets, ", "))
	ct, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order fields: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("order.update", "order", fmt.Sprintf("%d", id))
	}
	return nil
}

func (s *OrderStore) Delete(ctx context.Context, id int64) error {
	ct, err := s.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("order.delete", "order", fmt.Sprintf("%d", id))
	}
	return nil
}

func (s *OrderStore) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.StartDate != nil {
		add("created_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("created_at <= $%d", *filter.EndDate)
	}
	if filter.Currency != "" {
		add("currency = $%d", filter.Currency)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			`(order_number ILIKE $%d OR customer_email ILIKE $%d OR identification_value ILIKE $%d
			  OR vin_number ILIKE $%d OR package_type ILIKE $%d)`,
			n, n, n, n, n))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return s.queryOrders(ctx, query, args...)
}

func (s *OrderStore) StatsByDay(ctx context.Context, days int) ([]domain.OrderDayStat, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DATE(created_at) AS day, COUNT(*), COALESCE(SUM(amount), 0)
		FROM orders
		WHERE payment_status = 'completed'
		  AND created_at >= now() - ($1 * interval '1 day')
		GROUP BY DATE(created_at)
		ORDER BY day`,
		days,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query order stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.OrderDayStat
	for rows.Next() {
		var st domain.OrderDayStat
		if err := rows.Scan(&st.Day, &st.Count, &st.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan order stats: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (s *OrderStore) Counts(ctx context.Context) (*domain.AdminCounts, error) {
	var c domain.AdminCounts
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM orders WHERE status <> 'completed'),
			(SELECT COUNT(*) FROM reviews WHERE status = 'pending'),
			(SELECT COUNT(*) FROM contact_submissions WHERE status = 'new')`,
	).Scan(&c.OpenOrders, &c.PendingReviews, &c.NewContacts)
	if err != nil {
		return nil, fmt.Errorf("failed to query admin counts: %w", err)
	}
	return &c, nil
}

func (s *OrderStore) Sales(ctx context.Context, search string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_status = 'completed'`
	var args []interface{}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += ` AND (customer_email ILIKE $1 OR order_number ILIKE $1
			OR vehicle_type ILIKE $1 OR package_type ILIKE $1)`
	}
	query += " ORDER BY created_at DESC LIMIT 1000"

	return s.queryOrders(ctx, query, args...)
}

func (s *OrderStore) queryOrders(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Business is the process-wide business metrics instance. Nil until
// NewBusinessMetrics runs; callers guard on that so unit tests don't need
// a registry.
var Business *BusinessMetrics

// BusinessMetrics holds Prometheus metrics for business-level observability.
type BusinessMetrics struct {
	// Orders
	OrdersCreated   *prometheus.CounterVec
	OrdersCompleted *prometheus.CounterVec
	OrdersDeleted   prometheus.Counter
	OrderValue      *prometheus.HistogramVec

	// Payments
	CheckoutsCreated *prometheus.CounterVec
	PaymentFailed    *prometheus.CounterVec
	RevenueCollected *prometheus.CounterVec

	// Webhooks
	WebhookReceived  *prometheus.CounterVec
	WebhookProcessed *prometheus.CounterVec
	WebhookIgnored   *prometheus.CounterVec
	WebhookFailed    *prometheus.CounterVec
	WebhookLatency   *prometheus.HistogramVec

	// Notifications
	EmailSent   *prometheus.CounterVec
	EmailFailed *prometheus.CounterVec

	// Admin auth
	Logins      prometheus.Counter
	LoginFailed prometheus.Counter
}

// NewBusinessMetrics creates and registers all business metrics and
// installs them as the process-wide instance.
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "vinsight"
	}

	subsystem := "business"

	m := &BusinessMetrics{
		OrdersCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_created_total",
				Help:      "Total orders created",
			},
			[]string{"provider", "package"},
		),
		OrdersCompleted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_completed_total",
				Help:      "Total orders whose payment completed",
			},
			[]string{"provider"},
		),
		OrdersDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_deleted_total",
				Help:      "Total orders hard-deleted by administrators",
			},
		),
		OrderValue: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value",
				Help:      "Order amounts in currency units",
				Buckets:   []float64{10, 25, 40, 60, 80, 120, 200},
			},
			[]string{"currency"},
		),
		CheckoutsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkouts_created_total",
				Help:      "Total checkout sessions minted",
			},
			[]string{"provider"},
		),
		PaymentFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payments_failed_total",
				Help:      "Total failed payment events",
			},
			[]string{"provider"},
		),
		RevenueCollected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "revenue_collected_total",
				Help:      "Revenue from completed orders, in currency units",
			},
			[]string{"currency"},
		),
		WebhookReceived: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhooks_received_total",
				Help:      "Total webhook deliveries received",
			},
			[]string{"provider"},
		),
		WebhookProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhooks_processed_total",
				Help:      "Total webhook events acted upon",
			},
			[]string{"provider", "event"},
		),
		WebhookIgnored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhooks_ignored_total",
				Help:      "Total webhook events acknowledged without action",
			},
			[]string{"provider", "event"},
		),
		WebhookFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhooks_failed_total",
				Help:      "Total webhook events that failed processing",
			},
			[]string{"provider", "reason"},
		),
		WebhookLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_duration_seconds",
				Help:      "Webhook processing duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		EmailSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "emails_sent_total",
				Help:      "Total emails delivered",
			},
			[]string{"provider"},
		),
		EmailFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "emails_failed_total",
				Help:      "Total email delivery failures",
			},
			[]string{"provider"},
		),
		Logins: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "admin_logins_total",
				Help:      "Total successful admin logins",
			},
		),
		LoginFailed: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "admin_login_failures_total",
				Help:      "Total failed admin login attempts",
			},
		),
	}

	Business = m
	return m
}

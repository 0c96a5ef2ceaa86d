package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/domain"
)

// NATS subjects for lifecycle notifications.
const (
	subjectOrderPending   = "notify.order.pending"
	subjectOrderCompleted = "notify.order.completed"
	subjectContact        = "notify.contact.received"
	subjectReview         = "notify.review.received"
)

const deliverTimeout = 30 * time.Second

// Notifier is the fire-and-forget side of notification dispatch. Lifecycle
// events publish here and never block or fail the triggering operation;
// delivery errors end up in the outbox and the log only.
type Notifier interface {
	OrderPending(orderID int64)
	OrderCompleted(orderID int64)
	ContactReceived(contactID int64)
	ReviewReceived(reviewID int64)
}

type queueMsg struct {
	ID int64 `json:"id"`
}

// Queue implements Notifier over NATS. Events are published to a subject
// and an in-process subscriber loads the entity fresh and delivers through
// the dispatcher. With a nil connection (NATS not configured) events are
// handled directly on a goroutine instead.
type Queue struct {
	nc         *nats.Conn
	dispatcher *Dispatcher
	orders     domain.OrderStore
	contacts   domain.ContactStore
	reviews    domain.ReviewStore
	logger     zerolog.Logger
	subs       []*nats.Subscription
}

var _ Notifier = (*Queue)(nil)

// NewQueue creates the notification queue. nc may be nil.
func NewQueue(nc *nats.Conn, dispatcher *Dispatcher, orders domain.OrderStore,
	contacts domain.ContactStore, reviews domain.ReviewStore, logger zerolog.Logger) *Queue {
	return &Queue{
		nc:         nc,
		dispatcher: dispatcher,
		orders:     orders,
		contacts:   contacts,
		reviews:    reviews,
		logger:     logger.With().Str("component", "notify.queue").Logger(),
	}
}

// Start subscribes the in-process workers. A no-op without NATS.
func (q *Queue) Start() error {
	if q.nc == nil {
		return nil
	}

	handlers := map[string]func(int64){
		subjectOrderPending:   q.handleOrderPending,
		subjectOrderCompleted: q.handleOrderCompleted,
		subjectContact:        q.handleContact,
		subjectReview:         q.handleReview,
	}

	for subject, handle := range handlers {
		handle := handle
		sub, err := q.nc.Subscribe(subject, func(m *nats.Msg) {
			var msg queueMsg
			if err := json.Unmarshal(m.Data, &msg); err != nil {
				q.logger.Error().Err(err).Str("subject", m.Subject).Msg("malformed queue message")
				return
			}
			handle(msg.ID)
		})
		if err != nil {
			return err
		}
		q.subs = append(q.subs, sub)
	}

	return nil
}

// Drain unsubscribes and flushes pending messages.
func (q *Queue) Drain() {
	for _, sub := range q.subs {
		_ = sub.Drain()
	}
	if q.nc != nil {
		_ = q.nc.Drain()
	}
}

func (q *Queue) OrderPending(orderID int64) {
	q.publish(subjectOrderPending, orderID, q.handleOrderPending)
}

func (q *Queue) OrderCompleted(orderID int64) {
	q.publish(subjectOrderCompleted, orderID, q.handleOrderCompleted)
}

func (q *Queue) ContactReceived(contactID int64) {
	q.publish(subjectContact, contactID, q.handleContact)
}

func (q *Queue) ReviewReceived(reviewID int64) {
	q.publish(subjectReview, reviewID, q.handleReview)
}

func (q *Queue) publish(subject string, id int64, direct func(int64)) {
	if q.nc == nil {
		go direct(id)
		return
	}

	data, _ := json.Marshal(queueMsg{ID: id})
	if err := q.nc.Publish(subject, data); err != nil {
		q.logger.Warn().Err(err).Str("subject", subject).Int64("id", id).
			Msg("publish failed, delivering directly")
		go direct(id)
	}
}

func (q *Queue) handleOrderPending(orderID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	order, err := q.orders.GetByID(ctx, orderID)
	if err != nil {
		q.logger.Error().Err(err).Int64("order_id", orderID).Msg("order lookup failed for pending notification")
		return
	}

	if err := q.dispatcher.SendToAdmin(ctx, OrderPendingAdmin(order)); err != nil {
		q.logger.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("admin pending notification failed")
	}
	if err := q.dispatcher.SendTo(ctx, order.CustomerEmail, OrderPendingCustomer(order)); err != nil {
		q.logger.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("customer pending notification failed")
	}
}

func (q *Queue) handleOrderCompleted(orderID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	order, err := q.orders.GetByID(ctx, orderID)
	if err != nil {
		q.logger.Error().Err(err).Int64("order_id", orderID).Msg("order lookup failed for completion notification")
		return
	}

	// Each send is independently best-effort: a failed admin alert must
	// not block the customer confirmation, and vice versa.
	if err := q.dispatcher.SendToAdmin(ctx, OrderCompletedAdmin(order)); err != nil {
		q.logger.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("admin completion notification failed")
	}
	if err := q.dispatcher.SendTo(ctx, order.CustomerEmail, OrderConfirmation(order)); err != nil {
		q.logger.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("customer confirmation failed")
	}
}

func (q *Queue) handleContact(contactID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	contact, err := q.contacts.GetByID(ctx, contactID)
	if err != nil {
		q.logger.Error().Err(err).Int64("contact_id", contactID).Msg("contact lookup failed for notification")
		return
	}

	if err := q.dispatcher.SendToAdmin(ctx, ContactReceived(contact)); err != nil {
		q.logger.Warn().Err(err).Int64("contact_id", contactID).Msg("contact notification failed")
	}
}

func (q *Queue) handleReview(reviewID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	review, err := q.reviews.GetByID(ctx, reviewID)
	if err != nil {
		q.logger.Error().Err(err).Int64("review_id", reviewID).Msg("review lookup failed for notification")
		return
	}

	if err := q.dispatcher.SendToAdmin(ctx, ReviewReceived(review)); err != nil {
		q.logger.Warn().Err(err).Int64("review_id", reviewID).Msg("review notification failed")
	}
}

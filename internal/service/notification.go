package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chai-nz/cafe-service/internal/models"
)

// dedupeWindow suppresses identical notifications produced by rapid
// re-dispatch. The check is racy under concurrency; duplicates are a UX
// nuisance, not a correctness violation.
const dedupeWindow = 2 * time.Minute

var statusTitles = map[models.OrderStatus]string{
	models.OrderStatusPreparing:      "Order Being Prepared",
	models.OrderStatusReadyForPickup: "Order Ready for Pickup!",
	models.OrderStatusCompleted:      "Order Completed",
}

var statusMessages = map[models.OrderStatus]string{
	models.OrderStatusPreparing:      "is now being prepared by our team",
	models.OrderStatusReadyForPickup: "is ready for pickup! Please come to the counter",
	models.OrderStatusCompleted:      "has been completed. Thank you for your order!",
}

// NotificationService persists order notifications for polling clients and
// pushes them to the staff live feed. Dispatch is best-effort: a failure
// here never fails the status update that triggered it.
type NotificationService struct {
	store NotificationStore
	cache NotificationCache
	feed  OrderFeed
	log   *zap.Logger
	now   func() time.Time
}

// NewNotificationService creates a new notification service. cache and feed
// may be nil when Redis or the websocket hub are not configured.
func NewNotificationService(store NotificationStore, cache NotificationCache, feed OrderFeed, log *zap.Logger) *NotificationService {
	return &NotificationService{
		store: store,
		cache: cache,
		feed:  feed,
		log:   log,
		now:   time.Now,
	}
}

// HandleStatusChanged reacts to an order status transition. Runs
// synchronously after the status write; all failures are logged and
// swallowed.
func (s *NotificationService) HandleStatusChanged(ctx context.Context, event models.OrderStatusChanged) {
	title, ok := statusTitles[event.NewStatus]
	if !ok {
		title = "Order Status Updated"
	}
	message, ok := statusMessages[event.NewStatus]
	if !ok {
		message = "status has been updated to " + string(event.NewStatus)
	}

	notification := models.Notification{
		UserID:  event.Order.UserID,
		OrderID: &event.Order.ID,
		Title:   title,
		Message: "Your order #" + event.Order.OrderNumber + " " + message,
		Type:    models.NotificationTypeOrder,
	}

	if _, err := s.create(ctx, notification); err != nil {
		// Fallback path: one retry, then give up without failing the caller
		if _, err := s.store.Create(ctx, notification); err != nil {
			s.log.Error("notification creation failed",
				zap.String("order_number", event.Order.OrderNumber),
				zap.Error(err))
		}
	}

	if s.cache != nil {
		s.cache.ForgetUnreadCount(ctx, event.Order.UserID)
	}

	if s.feed != nil {
		s.feed.BroadcastOrderEvent("order.status", map[string]interface{}{
			"order_id":     event.Order.ID,
			"order_number": event.Order.OrderNumber,
			"old_status":   event.OldStatus,
			"new_status":   event.NewStatus,
		})
	}
}

// create persists a notification unless one for the same user, order, and
// message was created inside the dedupe window, in which case the existing
// row is returned.
func (s *NotificationService) create(ctx context.Context, n models.Notification) (*models.Notification, error) {
	existing, err := s.store.FindRecent(ctx, n.UserID, n.OrderID, n.Message, s.now().Add(-dedupeWindow))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.log.Info("duplicate notification suppressed",
			zap.String("existing_id", existing.ID.String()))
		return existing, nil
	}

	return s.store.Create(ctx, n)
}

// ListForUser returns the latest notifications for polling clients
func (s *NotificationService) ListForUser(ctx context.Context, actor models.Actor, limit int) ([]models.Notification, error) {
	return s.store.ListForUser(ctx, actor.UserID, limit)
}

// UnreadCount returns the unread total, served from cache when possible
func (s *NotificationService) UnreadCount(ctx context.Context, actor models.Actor) (int64, error) {
	if s.cache != nil {
		if count, ok := s.cache.UnreadCount(ctx, actor.UserID); ok {
			return count, nil
		}
	}

	count, err := s.store.UnreadCount(ctx, actor.UserID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		s.cache.SetUnreadCount(ctx, actor.UserID, count)
	}

	return count, nil
}

// MarkRead marks one notification as read
func (s *NotificationService) MarkRead(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if err := s.store.MarkRead(ctx, id, actor.UserID); err != nil {
		return ErrNotFound
	}
	if s.cache != nil {
		s.cache.ForgetUnreadCount(ctx, actor.UserID)
	}
	return nil
}

// MarkAllRead marks every notification of the actor as read
func (s *NotificationService) MarkAllRead(ctx context.Context, actor models.Actor) (int64, error) {
	updated, err := s.store.MarkAllRead(ctx, actor.UserID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.ForgetUnreadCount(ctx, actor.UserID)
	}
	return updated, nil
}

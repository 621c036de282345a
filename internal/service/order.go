package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chai-nz/cafe-service/internal/models"
)

// OrderService handles order placement and the status lifecycle
type OrderService struct {
	orders        OrderStore
	pricer        *Pricer
	notifications StatusChangedHandler
	log           *zap.Logger
	now           func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(orders OrderStore, pricer *Pricer, notifications StatusChangedHandler, log *zap.Logger) *OrderService {
	return &OrderService{
		orders:        orders,
		pricer:        pricer,
		notifications: notifications,
		log:           log,
		now:           time.Now,
	}
}

// PlaceOrder validates, prices, and persists an order as one transaction.
// Guests must carry session context and may hold only one active order per
// session at a time.
func (s *OrderService) PlaceOrder(ctx context.Context, actor models.Actor, req models.OrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	var sessionID *string
	if actor.IsGuest() {
		if req.SessionID == nil || *req.SessionID == "" || req.TableNumber == nil || *req.TableNumber == "" {
			return nil, ErrMissingGuestContext
		}
		sessionID = req.SessionID

		existing, err := s.orders.FindActiveBySession(ctx, actor.UserID, *sessionID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, &ActiveOrderExistsError{Existing: existing}
		}
	}

	// Catalog validation happens-before any write
	total, priced, err := s.pricer.PriceOrder(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	order := models.Order{
		UserID:       actor.UserID,
		SessionID:    sessionID,
		CustomerName: req.CustomerName,
		TotalPrice:   total,
		Status:       models.OrderStatusPreparing,
	}

	created, err := s.orders.Create(ctx, order, priced)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.log.Info("order placed",
		zap.String("order_number", created.OrderNumber),
		zap.String("user_id", actor.UserID.String()),
		zap.String("total", created.TotalPrice.StringFixed(2)))

	return created, nil
}

// UpdateStatus transitions an order through its lifecycle. Equal statuses
// are a no-op; a changed status is persisted and the event is dispatched
// synchronously afterwards.
func (s *OrderService) UpdateStatus(ctx context.Context, actor models.Actor, orderID uuid.UUID, newStatus models.OrderStatus) (*models.Order, error) {
	if !actor.CanManageOrders() {
		return nil, ErrUnauthorized
	}
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}

	oldStatus := order.Status
	if oldStatus == newStatus {
		return order, nil
	}
	if !oldStatus.CanTransitionTo(newStatus) {
		return nil, &InvalidTransitionError{From: oldStatus, To: newStatus}
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, newStatus)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	updated.Items = order.Items

	s.notifications.HandleStatusChanged(ctx, models.OrderStatusChanged{
		Order:     updated,
		Actor:     actor,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	})

	return updated, nil
}

// GetOrder retrieves an order, enforcing ownership for non-staff actors
func (s *OrderService) GetOrder(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}

	if !actor.CanManageOrders() && order.UserID != actor.UserID {
		return nil, ErrUnauthorized
	}

	return order, nil
}

// ListOrders lists orders: everything for staff, own orders otherwise
func (s *OrderService) ListOrders(ctx context.Context, actor models.Actor, status *models.OrderStatus) ([]models.Order, error) {
	var userID *uuid.UUID
	if !actor.CanManageOrders() {
		userID = &actor.UserID
	}
	return s.orders.List(ctx, status, userID)
}

// SessionOrders lists a guest session's orders. The query is scoped to the
// actor's own user id, so one table's diners cannot read another session.
func (s *OrderService) SessionOrders(ctx context.Context, actor models.Actor, sessionID string) ([]models.Order, error) {
	return s.orders.ListBySession(ctx, actor.UserID, sessionID)
}

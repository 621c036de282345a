package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/chai-nz/cafe-service/internal/models"
)

// maxOrderNumberAttempts bounds the retry loop when two concurrent inserts
// pick the same candidate order number.
const maxOrderNumberAttempts = 5

// OrderRepository handles order data access
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && string(pqErr.Constraint) == constraint
	}
	return false
}

// Create persists an order with its items and toppings in a single
// transaction. The order number unique constraint is the final arbiter under
// concurrency; on collision the whole transaction is retried with a fresh
// candidate.
func (r *OrderRepository) Create(ctx context.Context, order models.Order, items []models.PricedItem) (*models.Order, error) {
	var created *models.Order
	var err error

	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		number := order.OrderNumber
		if number == "" {
			number = models.GenerateOrderNumber()
		}

		created, err = r.createTx(ctx, order, number, items)
		if err == nil {
			return created, nil
		}
		if isUniqueViolation(err, "orders_order_number_key") && order.OrderNumber == "" {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to create order: order number collisions exhausted retries: %w", err)
}

func (r *OrderRepository) createTx(ctx context.Context, order models.Order, orderNumber string, items []models.PricedItem) (*models.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	orderQuery := `
		INSERT INTO orders (user_id, session_id, customer_name, order_number, total_price, order_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, session_id, customer_name, order_number, total_price, order_status, created_at, updated_at
	`

	var created models.Order
	err = tx.GetContext(
		ctx,
		&created,
		orderQuery,
		order.UserID,
		order.SessionID,
		order.CustomerName,
		orderNumber,
		order.TotalPrice,
		order.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	created.Items = make([]models.OrderItem, 0, len(items))

	for _, item := range items {
		var createdItem models.OrderItem
		err = tx.GetContext(
			ctx,
			&createdItem,
			`INSERT INTO order_items (order_id, product_size_id, quantity, unit_price, sugar_level)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, order_id, product_size_id, quantity, unit_price, sugar_level, created_at, updated_at`,
			created.ID,
			item.ProductSizeID,
			item.Quantity,
			item.UnitPrice,
			item.SugarLevel,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}

		createdItem.ProductName = item.ProductName
		createdItem.Toppings = make([]models.OrderTopping, 0, len(item.Toppings))

		for _, topping := range item.Toppings {
			var createdTopping models.OrderTopping
			err = tx.GetContext(
				ctx,
				&createdTopping,
				`INSERT INTO order_toppings (order_item_id, topping_id, price)
				 VALUES ($1, $2, $3)
				 RETURNING id, order_item_id, topping_id, price`,
				createdItem.ID,
				topping.ToppingID,
				topping.Price,
			)
			if err != nil {
				return nil, fmt.Errorf("failed to create order topping: %w", err)
			}
			createdItem.Toppings = append(createdItem.Toppings, createdTopping)
		}

		created.Items = append(created.Items, createdItem)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return &created, nil
}

// GetByID retrieves an order with its full item/topping graph
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `
		SELECT id, user_id, session_id, customer_name, order_number, total_price, order_status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var order models.Order
	err := r.db.GetContext(ctx, &order, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.GetOrderItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	order.Items = items

	return &order, nil
}

// GetOrderItems retrieves items for an order
func (r *OrderRepository) GetOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_size_id, oi.quantity, oi.unit_price,
		       oi.sugar_level, oi.created_at, oi.updated_at,
		       p.name AS product_name, ps.size AS size
		FROM order_items oi
		JOIN product_sizes ps ON oi.product_size_id = ps.id
		JOIN products p ON ps.product_id = p.id
		WHERE oi.order_id = $1
		ORDER BY oi.created_at ASC
	`

	var items []models.OrderItem
	err := r.db.SelectContext(ctx, &items, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	for i := range items {
		toppings, err := r.GetItemToppings(ctx, items[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get item toppings: %w", err)
		}
		items[i].Toppings = toppings
	}

	return items, nil
}

// GetItemToppings retrieves toppings for an order item
func (r *OrderRepository) GetItemToppings(ctx context.Context, orderItemID uuid.UUID) ([]models.OrderTopping, error) {
	query := `
		SELECT ot.id, ot.order_item_id, ot.topping_id, ot.price,
		       t.name AS topping_name
		FROM order_toppings ot
		JOIN toppings t ON ot.topping_id = t.id
		WHERE ot.order_item_id = $1
	`

	var toppings []models.OrderTopping
	err := r.db.SelectContext(ctx, &toppings, query, orderItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order item toppings: %w", err)
	}

	return toppings, nil
}

// List retrieves orders, optionally filtered by status and owner
func (r *OrderRepository) List(ctx context.Context, status *models.OrderStatus, userID *uuid.UUID) ([]models.Order, error) {
	query := `
		SELECT id, user_id, session_id, customer_name, order_number, total_price, order_status, created_at, updated_at
		FROM orders
		WHERE 1=1
	`
	var args []interface{}

	if status != nil {
		args = append(args, *status)
		query += fmt.Sprintf(" AND order_status = $%d", len(args))
	}
	if userID != nil {
		args = append(args, *userID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}

	query += " ORDER BY created_at DESC LIMIT 100"

	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// ListBySession retrieves a guest session's orders, newest first
func (r *OrderRepository) ListBySession(ctx context.Context, userID uuid.UUID, sessionID string) ([]models.Order, error) {
	query := `
		SELECT id, user_id, session_id, customer_name, order_number, total_price, order_status, created_at, updated_at
		FROM orders
		WHERE user_id = $1 AND session_id = $2
		ORDER BY created_at DESC
	`

	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, query, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session orders: %w", err)
	}

	for i := range orders {
		items, err := r.GetOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

// FindActiveBySession finds an order for the (user, session) pair that is
// still preparing or awaiting pickup. Returns nil when none exists.
func (r *OrderRepository) FindActiveBySession(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Order, error) {
	query := `
		SELECT id, user_id, session_id, customer_name, order_number, total_price, order_status, created_at, updated_at
		FROM orders
		WHERE user_id = $1 AND session_id = $2 AND order_status IN ($3, $4)
		ORDER BY created_at DESC
		LIMIT 1
	`

	var order models.Order
	err := r.db.GetContext(ctx, &order, query, userID, sessionID,
		models.OrderStatusPreparing, models.OrderStatusReadyForPickup)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active session order: %w", err)
	}

	return &order, nil
}

// UpdateStatus persists a status change and returns the updated order
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	query := `
		UPDATE orders
		SET order_status = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, user_id, session_id, customer_name, order_number, total_price, order_status, created_at, updated_at
	`

	var order models.Order
	err := r.db.GetContext(ctx, &order, query, id, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return &order, nil
}

// DeleteAbandonedGuestOrders removes guest orders stuck in preparing since
// before the cutoff. Used by the periodic cleanup sweep.
func (r *OrderRepository) DeleteAbandonedGuestOrders(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM orders
		WHERE order_status = $1
		  AND created_at < $2
		  AND user_id IN (SELECT id FROM users WHERE role = $3)
	`

	res, err := r.db.ExecContext(ctx, query, models.OrderStatusPreparing, cutoff, models.RoleGuest)
	if err != nil {
		return 0, fmt.Errorf("failed to delete abandoned guest orders: %w", err)
	}

	return res.RowsAffected()
}

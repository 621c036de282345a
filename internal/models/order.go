package models

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReadyForPickup OrderStatus = "ready_for_pickup"
	OrderStatusCompleted      OrderStatus = "completed"
)

// statusRank orders the lifecycle; transitions may only move forward.
var statusRank = map[OrderStatus]int{
	OrderStatusPreparing:      0,
	OrderStatusReadyForPickup: 1,
	OrderStatusCompleted:      2,
}

// Valid reports whether s is one of the known order statuses
func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is a legal forward
// transition. Skipping ready_for_pickup is allowed (walk-up orders are often
// handed over directly); moving backwards is not.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// SugarLevel is the sweetness selection for an order item
type SugarLevel string

const (
	SugarLevelZero        SugarLevel = "0%"
	SugarLevelQuarter     SugarLevel = "25%"
	SugarLevelHalf        SugarLevel = "50%"
	SugarLevelThreeQuarts SugarLevel = "75%"
	SugarLevelFull        SugarLevel = "100%"
)

// DefaultSugarLevel is applied when a request omits the field
const DefaultSugarLevel = SugarLevelFull

func (s SugarLevel) Valid() bool {
	switch s {
	case SugarLevelZero, SugarLevelQuarter, SugarLevelHalf, SugarLevelThreeQuarts, SugarLevelFull:
		return true
	}
	return false
}

// Order represents a customer order
type Order struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	UserID       uuid.UUID       `db:"user_id" json:"user_id"`
	SessionID    *string         `db:"session_id" json:"session_id,omitempty"`
	CustomerName *string         `db:"customer_name" json:"customer_name,omitempty"`
	OrderNumber  string          `db:"order_number" json:"order_number"`
	TotalPrice   decimal.Decimal `db:"total_price" json:"total_price"`
	Status       OrderStatus     `db:"order_status" json:"order_status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`

	// Not stored directly in the database
	Items []OrderItem `db:"-" json:"items,omitempty"`
	User  *User       `db:"-" json:"user,omitempty"`
}

// Active reports whether the order still occupies its guest session
func (o *Order) Active() bool {
	return o.Status == OrderStatusPreparing || o.Status == OrderStatusReadyForPickup
}

// OrderItem represents a line in an order. UnitPrice is a snapshot of the
// product-size price at order time, never a live reference.
type OrderItem struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	OrderID       uuid.UUID       `db:"order_id" json:"order_id"`
	ProductSizeID uuid.UUID       `db:"product_size_id" json:"product_size_id"`
	Quantity      int             `db:"quantity" json:"quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price" json:"unit_price"`
	SugarLevel    SugarLevel      `db:"sugar_level" json:"sugar_level"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`

	// Joined from product_sizes/products
	ProductName string            `db:"product_name" json:"product_name,omitempty"`
	Size        ProductSizeOption `db:"size" json:"size,omitempty"`

	Toppings []OrderTopping `db:"-" json:"toppings,omitempty"`
}

// OrderTopping records a topping on an order item with its price snapshot
type OrderTopping struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	OrderItemID uuid.UUID       `db:"order_item_id" json:"order_item_id"`
	ToppingID   uuid.UUID       `db:"topping_id" json:"topping_id"`
	Price       decimal.Decimal `db:"price" json:"price"`

	// Joined from toppings
	ToppingName string `db:"topping_name" json:"topping_name,omitempty"`
}

// OrderRequest is used for order creation
type OrderRequest struct {
	Items        []OrderItemRequest `json:"items"`
	CustomerName *string            `json:"customer_name"`
	SessionID    *string            `json:"session_id"`
	TableNumber  *string            `json:"table_number"`
}

// OrderItemRequest is used for order item creation
type OrderItemRequest struct {
	ProductSizeID uuid.UUID             `json:"product_size_id"`
	Quantity      int                   `json:"quantity"`
	SugarLevel    SugarLevel            `json:"sugar_level"`
	Toppings      []OrderToppingRequest `json:"toppings"`
}

// OrderToppingRequest is used for order item topping selection
type OrderToppingRequest struct {
	ToppingID uuid.UUID `json:"topping_id"`
}

// PricedItem is a normalized order line produced by the pricing engine,
// ready to persist.
type PricedItem struct {
	ProductSizeID uuid.UUID
	ProductName   string
	Quantity      int
	UnitPrice     decimal.Decimal
	SugarLevel    SugarLevel
	Toppings      []PricedTopping
	LineTotal     decimal.Decimal
}

// PricedTopping is a topping selection with its product-specific price snapshot
type PricedTopping struct {
	ToppingID uuid.UUID
	Price     decimal.Decimal
}

// OrderStatusChanged is emitted after a status transition commits
type OrderStatusChanged struct {
	Order     *Order
	Actor     Actor
	OldStatus OrderStatus
	NewStatus OrderStatus
}

// GenerateOrderNumber produces a candidate human-readable order number. The
// orders.order_number unique constraint is the final arbiter; callers retry
// on collision.
func GenerateOrderNumber() string {
	return fmt.Sprintf("ORD%06d", rand.IntN(999999)+1)
}

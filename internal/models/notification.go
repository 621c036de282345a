package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationTypeOrder marks notifications produced by order status changes
const NotificationTypeOrder = "order"

// Notification is a polled message row; clients fetch unread counts and
// latest entries periodically.
type Notification struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	OrderID   *uuid.UUID `db:"order_id" json:"order_id,omitempty"`
	Title     string     `db:"title" json:"title"`
	Message   string     `db:"message" json:"message"`
	Type      string     `db:"type" json:"type"`
	Read      bool       `db:"read" json:"read"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// PhoneOTP is a one-time code for phone login; upserted per phone number
type PhoneOTP struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Phone     string    `db:"phone" json:"phone"`
	Code      string    `db:"otp" json:"-"`
	Name      *string   `db:"name" json:"name,omitempty"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsValid reports whether the code can still be used
func (o *PhoneOTP) IsValid(now time.Time) bool {
	return now.Before(o.ExpiresAt)
}

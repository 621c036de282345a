package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleShopOwner UserRole = "shop_owner"
	RoleStaff     UserRole = "staff"
	RoleCustomer  UserRole = "user"
	RoleGuest     UserRole = "guest"
)

type User struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    string     `db:"password_hash" json:"-"` // Never expose in JSON
	Phone           *string    `db:"phone" json:"phone,omitempty"`
	Role            UserRole   `db:"role" json:"role"`
	TableNumber     *string    `db:"table_number" json:"table_number,omitempty"`
	ExpiresAt       *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	PhoneVerifiedAt *time.Time `db:"phone_verified_at" json:"phone_verified_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Expired reports whether an account-level expiry has passed. Only guest
// accounts carry one.
func (u *User) Expired(now time.Time) bool {
	return u.ExpiresAt != nil && now.After(*u.ExpiresAt)
}

// Actor is the request-scoped identity every core operation receives. It is
// resolved once by the auth middleware so authorization checks become
// capability tests instead of role string comparisons in handlers.
type Actor struct {
	UserID           uuid.UUID
	Role             UserRole
	TokenID          *uuid.UUID
	TokenExpiresAt   *time.Time
	AccountExpiresAt *time.Time
	TableNumber      *string
}

func (a Actor) IsAdmin() bool     { return a.Role == RoleAdmin }
func (a Actor) IsShopOwner() bool { return a.Role == RoleShopOwner }
func (a Actor) IsStaff() bool     { return a.Role == RoleStaff }
func (a Actor) IsGuest() bool     { return a.Role == RoleGuest }

// CanManageOrders reports whether the actor may change order status and see
// every order.
func (a Actor) CanManageOrders() bool {
	return a.IsAdmin() || a.IsShopOwner() || a.IsStaff()
}

// CanManageInvitations reports whether the actor may create and revoke table
// invitations.
func (a Actor) CanManageInvitations() bool {
	return a.IsAdmin() || a.IsShopOwner()
}

// RegisterRequest is used for account registration
type RegisterRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Phone    *string  `json:"phone"`
	Role     UserRole `json:"role"`
}

// LoginRequest is used for email/password login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

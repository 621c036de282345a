package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Token abilities granted to guest session credentials
const (
	AbilityGuestOrder = "guest:order"
	AbilityGuestRead  = "guest:read"
)

// AccessToken is a database-backed opaque credential. Only the SHA-256 hash
// of the plaintext is stored. ExpiresAt is a structured session window,
// checked by middleware on every request; the account-level expiry lives on
// the user row.
type AccessToken struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	UserID     uuid.UUID      `db:"user_id" json:"user_id"`
	Name       string         `db:"name" json:"name"`
	TokenHash  string         `db:"token_hash" json:"-"`
	Abilities  pq.StringArray `db:"abilities" json:"abilities"`
	ExpiresAt  *time.Time     `db:"expires_at" json:"expires_at,omitempty"`
	LastUsedAt *time.Time     `db:"last_used_at" json:"last_used_at,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// Can reports whether the token carries the given ability
func (t *AccessToken) Can(ability string) bool {
	for _, a := range t.Abilities {
		if a == ability {
			return true
		}
	}
	return false
}

// Expired reports whether the session window has closed
func (t *AccessToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// GuestSession correlates the orders of one diner sitting. One guest account
// per table can own many sessions over its lifetime.
type GuestSession struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	SessionID   string     `db:"session_id" json:"session_id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	TableNumber string     `db:"table_number" json:"table_number"`
	TokenID     *uuid.UUID `db:"token_id" json:"token_id,omitempty"`
	ExpiresAt   time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

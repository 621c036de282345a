package models

import (
	"time"

	"github.com/google/uuid"
)

// InvitationKind distinguishes the two invitation lifecycles: table
// invitations stay redeemable until they expire, staff invitations are
// single-use.
type InvitationKind string

const (
	InvitationKindTable InvitationKind = "table"
	InvitationKindStaff InvitationKind = "staff"
)

// UserInvitation is a redeemable token granting either a table guest session
// or (legacy) access to a pre-provisioned staff account.
type UserInvitation struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        uuid.UUID  `db:"user_id" json:"user_id"` // issuing admin/shop owner
	InvitedUserID *uuid.UUID `db:"invited_user_id" json:"invited_user_id,omitempty"`
	Token         string     `db:"token" json:"token"`
	Role          UserRole   `db:"role" json:"role"`
	TableNumber   *string    `db:"table_number" json:"table_number,omitempty"`
	ExpiresAt     *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	UsedAt        *time.Time `db:"used_at" json:"used_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`

	// Joined from users
	IssuerName string `db:"issuer_name" json:"issuer_name,omitempty"`
}

// Kind derives the invitation variant from the granted role. Guest
// invitations open table sessions even when the link carries no table number
// (the client may supply one on redemption); everything else is the legacy
// staff flow.
func (i *UserInvitation) Kind() InvitationKind {
	if i.Role == RoleGuest {
		return InvitationKindTable
	}
	return InvitationKindStaff
}

// IsValid reports whether the invitation can still be redeemed
func (i *UserInvitation) IsValid(now time.Time) bool {
	if i.UsedAt != nil {
		return false
	}
	return i.ExpiresAt == nil || now.Before(*i.ExpiresAt)
}

// StaffInvitationRequest is used for the legacy staff provisioning flow
type StaffInvitationRequest struct {
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       *string    `json:"phone"`
	Role        UserRole   `json:"role"`
	TableNumber *string    `json:"table_number"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

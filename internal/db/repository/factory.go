package repository

import (
	"github.com/jmoiron/sqlx"
)

// Factory provides access to all repositories
type Factory struct {
	User         *UserRepository
	Catalog      *CatalogRepository
	Order        *OrderRepository
	Invitation   *InvitationRepository
	Token        *TokenRepository
	Session      *SessionRepository
	Notification *NotificationRepository
	OTP          *OTPRepository
}

// NewFactory creates a new repository factory
func NewFactory(db *sqlx.DB) *Factory {
	return &Factory{
		User:         NewUserRepository(db),
		Catalog:      NewCatalogRepository(db),
		Order:        NewOrderRepository(db),
		Invitation:   NewInvitationRepository(db),
		Token:        NewTokenRepository(db),
		Session:      NewSessionRepository(db),
		Notification: NewNotificationRepository(db),
		OTP:          NewOTPRepository(db),
	}
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chai-nz/cafe-service/internal/models"
)

// Repository ports. The sqlx repositories satisfy these; tests substitute
// mocks. Lookups return (nil, nil) when the row is absent.

type CatalogLookup interface {
	GetProductSize(ctx context.Context, id uuid.UUID) (*models.ProductSize, error)
	GetTopping(ctx context.Context, id uuid.UUID) (*models.Topping, error)
	GetProductTopping(ctx context.Context, productID, toppingID uuid.UUID) (*models.ProductTopping, error)
}

type OrderStore interface {
	Create(ctx context.Context, order models.Order, items []models.PricedItem) (*models.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, status *models.OrderStatus, userID *uuid.UUID) ([]models.Order, error)
	ListBySession(ctx context.Context, userID uuid.UUID, sessionID string) ([]models.Order, error)
	FindActiveBySession(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
	DeleteAbandonedGuestOrders(ctx context.Context, cutoff time.Time) (int64, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	Create(ctx context.Context, user models.User) (*models.User, error)
	ResolveGuestForTable(ctx context.Context, tableNumber string, expiresAt time.Time) (*models.User, bool, error)
	SetPhoneVerified(ctx context.Context, id uuid.UUID, at time.Time) error
	DeleteExpiredGuests(ctx context.Context, now time.Time) (int64, error)
}

type InvitationStore interface {
	CreateForTable(ctx context.Context, inv models.UserInvitation) (created, existing *models.UserInvitation, err error)
	Create(ctx context.Context, inv models.UserInvitation) (*models.UserInvitation, error)
	GetByToken(ctx context.Context, token string) (*models.UserInvitation, error)
	TokenExists(ctx context.Context, token string) (bool, error)
	MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	List(ctx context.Context) ([]models.UserInvitation, error)
	ListLiveByTable(ctx context.Context, tableNumber string, now time.Time) ([]models.UserInvitation, error)
	DeleteByToken(ctx context.Context, token string) (*models.UserInvitation, error)
	DeleteByTokens(ctx context.Context, tokens []string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type TokenStore interface {
	Create(ctx context.Context, token models.AccessToken) (*models.AccessToken, error)
	GetByHash(ctx context.Context, hash string) (*models.AccessToken, error)
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type SessionStore interface {
	Create(ctx context.Context, session models.GuestSession) (*models.GuestSession, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.GuestSession, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n models.Notification) (*models.Notification, error)
	FindRecent(ctx context.Context, userID uuid.UUID, orderID *uuid.UUID, message string, since time.Time) (*models.Notification, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type OTPStore interface {
	Upsert(ctx context.Context, otp models.PhoneOTP) error
	GetByPhone(ctx context.Context, phone string) (*models.PhoneOTP, error)
	DeleteByPhone(ctx context.Context, phone string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SMSSender delivers one-time codes. The production implementation lives
// outside this service; tests and development use a logging stub.
type SMSSender interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// NotificationCache caches unread counts for the polling endpoints.
// Implementations are best-effort and must not fail requests.
type NotificationCache interface {
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, bool)
	SetUnreadCount(ctx context.Context, userID uuid.UUID, count int64)
	ForgetUnreadCount(ctx context.Context, userID uuid.UUID)
}

// OrderFeed pushes order events to connected staff dashboards
type OrderFeed interface {
	BroadcastOrderEvent(eventType string, payload interface{})
}

// StatusChangedHandler consumes order status change events synchronously
// after the transition commits.
type StatusChangedHandler interface {
	HandleStatusChanged(ctx context.Context, event models.OrderStatusChanged)
}

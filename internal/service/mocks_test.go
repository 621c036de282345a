package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chai-nz/cafe-service/internal/models"
)

// Function-field mocks: tests set only the methods they expect to be called.
// An unset field panics, which surfaces unexpected calls immediately.

type mockCatalog struct {
	GetProductSizeFn    func(ctx context.Context, id uuid.UUID) (*models.ProductSize, error)
	GetToppingFn        func(ctx context.Context, id uuid.UUID) (*models.Topping, error)
	GetProductToppingFn func(ctx context.Context, productID, toppingID uuid.UUID) (*models.ProductTopping, error)
}

func (m *mockCatalog) GetProductSize(ctx context.Context, id uuid.UUID) (*models.ProductSize, error) {
	return m.GetProductSizeFn(ctx, id)
}

func (m *mockCatalog) GetTopping(ctx context.Context, id uuid.UUID) (*models.Topping, error) {
	return m.GetToppingFn(ctx, id)
}

func (m *mockCatalog) GetProductTopping(ctx context.Context, productID, toppingID uuid.UUID) (*models.ProductTopping, error) {
	return m.GetProductToppingFn(ctx, productID, toppingID)
}

type mockOrderStore struct {
	CreateFn                     func(ctx context.Context, order models.Order, items []models.PricedItem) (*models.Order, error)
	GetByIDFn                    func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListFn                       func(ctx context.Context, status *models.OrderStatus, userID *uuid.UUID) ([]models.Order, error)
	ListBySessionFn              func(ctx context.Context, userID uuid.UUID, sessionID string) ([]models.Order, error)
	FindActiveBySessionFn        func(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Order, error)
	UpdateStatusFn               func(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
	DeleteAbandonedGuestOrdersFn func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockOrderStore) Create(ctx context.Context, order models.Order, items []models.PricedItem) (*models.Order, error) {
	return m.CreateFn(ctx, order, items)
}

func (m *mockOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockOrderStore) List(ctx context.Context, status *models.OrderStatus, userID *uuid.UUID) ([]models.Order, error) {
	return m.ListFn(ctx, status, userID)
}

func (m *mockOrderStore) ListBySession(ctx context.Context, userID uuid.UUID, sessionID string) ([]models.Order, error) {
	return m.ListBySessionFn(ctx, userID, sessionID)
}

func (m *mockOrderStore) FindActiveBySession(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Order, error) {
	return m.FindActiveBySessionFn(ctx, userID, sessionID)
}

func (m *mockOrderStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	return m.UpdateStatusFn(ctx, id, status)
}

func (m *mockOrderStore) DeleteAbandonedGuestOrders(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.DeleteAbandonedGuestOrdersFn(ctx, cutoff)
}

type mockUserStore struct {
	GetByIDFn              func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmailFn           func(ctx context.Context, email string) (*models.User, error)
	GetByPhoneFn           func(ctx context.Context, phone string) (*models.User, error)
	CreateFn               func(ctx context.Context, user models.User) (*models.User, error)
	ResolveGuestForTableFn func(ctx context.Context, tableNumber string, expiresAt time.Time) (*models.User, bool, error)
	SetPhoneVerifiedFn     func(ctx context.Context, id uuid.UUID, at time.Time) error
	DeleteExpiredGuestsFn  func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.GetByEmailFn(ctx, email)
}

func (m *mockUserStore) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return m.GetByPhoneFn(ctx, phone)
}

func (m *mockUserStore) Create(ctx context.Context, user models.User) (*models.User, error) {
	return m.CreateFn(ctx, user)
}

func (m *mockUserStore) ResolveGuestForTable(ctx context.Context, tableNumber string, expiresAt time.Time) (*models.User, bool, error) {
	return m.ResolveGuestForTableFn(ctx, tableNumber, expiresAt)
}

func (m *mockUserStore) SetPhoneVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.SetPhoneVerifiedFn(ctx, id, at)
}

func (m *mockUserStore) DeleteExpiredGuests(ctx context.Context, now time.Time) (int64, error) {
	return m.DeleteExpiredGuestsFn(ctx, now)
}

type mockInvitationStore struct {
	CreateForTableFn  func(ctx context.Context, inv models.UserInvitation) (*models.UserInvitation, *models.UserInvitation, error)
	CreateFn          func(ctx context.Context, inv models.UserInvitation) (*models.UserInvitation, error)
	GetByTokenFn      func(ctx context.Context, token string) (*models.UserInvitation, error)
	TokenExistsFn     func(ctx context.Context, token string) (bool, error)
	MarkUsedFn        func(ctx context.Context, id uuid.UUID, at time.Time) error
	ListFn            func(ctx context.Context) ([]models.UserInvitation, error)
	ListLiveByTableFn func(ctx context.Context, tableNumber string, now time.Time) ([]models.UserInvitation, error)
	DeleteByTokenFn   func(ctx context.Context, token string) (*models.UserInvitation, error)
	DeleteByTokensFn  func(ctx context.Context, tokens []string) (int64, error)
	DeleteExpiredFn   func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockInvitationStore) CreateForTable(ctx context.Context, inv models.UserInvitation) (*models.UserInvitation, *models.UserInvitation, error) {
	return m.CreateForTableFn(ctx, inv)
}

func (m *mockInvitationStore) Create(ctx context.Context, inv models.UserInvitation) (*models.UserInvitation, error) {
	return m.CreateFn(ctx, inv)
}

func (m *mockInvitationStore) GetByToken(ctx context.Context, token string) (*models.UserInvitation, error) {
	return m.GetByTokenFn(ctx, token)
}

func (m *mockInvitationStore) TokenExists(ctx context.Context, token string) (bool, error) {
	return m.TokenExistsFn(ctx, token)
}

func (m *mockInvitationStore) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.MarkUsedFn(ctx, id, at)
}

func (m *mockInvitationStore) List(ctx context.Context) ([]models.UserInvitation, error) {
	return m.ListFn(ctx)
}

func (m *mockInvitationStore) ListLiveByTable(ctx context.Context, tableNumber string, now time.Time) ([]models.UserInvitation, error) {
	return m.ListLiveByTableFn(ctx, tableNumber, now)
}

func (m *mockInvitationStore) DeleteByToken(ctx context.Context, token string) (*models.UserInvitation, error) {
	return m.DeleteByTokenFn(ctx, token)
}

func (m *mockInvitationStore) DeleteByTokens(ctx context.Context, tokens []string) (int64, error) {
	return m.DeleteByTokensFn(ctx, tokens)
}

func (m *mockInvitationStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return m.DeleteExpiredFn(ctx, now)
}

type mockTokenStore struct {
	CreateFn        func(ctx context.Context, token models.AccessToken) (*models.AccessToken, error)
	GetByHashFn     func(ctx context.Context, hash string) (*models.AccessToken, error)
	TouchLastUsedFn func(ctx context.Context, id uuid.UUID, at time.Time) error
	DeleteFn        func(ctx context.Context, id uuid.UUID) error
	DeleteExpiredFn func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockTokenStore) Create(ctx context.Context, token models.AccessToken) (*models.AccessToken, error) {
	return m.CreateFn(ctx, token)
}

func (m *mockTokenStore) GetByHash(ctx context.Context, hash string) (*models.AccessToken, error) {
	return m.GetByHashFn(ctx, hash)
}

func (m *mockTokenStore) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	if m.TouchLastUsedFn == nil {
		return nil
	}
	return m.TouchLastUsedFn(ctx, id, at)
}

func (m *mockTokenStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.DeleteFn(ctx, id)
}

func (m *mockTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return m.DeleteExpiredFn(ctx, now)
}

type mockSessionStore struct {
	CreateFn         func(ctx context.Context, session models.GuestSession) (*models.GuestSession, error)
	GetBySessionIDFn func(ctx context.Context, sessionID string) (*models.GuestSession, error)
	DeleteExpiredFn  func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockSessionStore) Create(ctx context.Context, session models.GuestSession) (*models.GuestSession, error) {
	return m.CreateFn(ctx, session)
}

func (m *mockSessionStore) GetBySessionID(ctx context.Context, sessionID string) (*models.GuestSession, error) {
	return m.GetBySessionIDFn(ctx, sessionID)
}

func (m *mockSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return m.DeleteExpiredFn(ctx, now)
}

type mockNotificationStore struct {
	CreateFn      func(ctx context.Context, n models.Notification) (*models.Notification, error)
	FindRecentFn  func(ctx context.Context, userID uuid.UUID, orderID *uuid.UUID, message string, since time.Time) (*models.Notification, error)
	ListForUserFn func(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	UnreadCountFn func(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkReadFn    func(ctx context.Context, id, userID uuid.UUID) error
	MarkAllReadFn func(ctx context.Context, userID uuid.UUID) (int64, error)
}

func (m *mockNotificationStore) Create(ctx context.Context, n models.Notification) (*models.Notification, error) {
	return m.CreateFn(ctx, n)
}

func (m *mockNotificationStore) FindRecent(ctx context.Context, userID uuid.UUID, orderID *uuid.UUID, message string, since time.Time) (*models.Notification, error) {
	return m.FindRecentFn(ctx, userID, orderID, message, since)
}

func (m *mockNotificationStore) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	return m.ListForUserFn(ctx, userID, limit)
}

func (m *mockNotificationStore) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return m.UnreadCountFn(ctx, userID)
}

func (m *mockNotificationStore) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return m.MarkReadFn(ctx, id, userID)
}

func (m *mockNotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return m.MarkAllReadFn(ctx, userID)
}

type mockOTPStore struct {
	UpsertFn        func(ctx context.Context, otp models.PhoneOTP) error
	GetByPhoneFn    func(ctx context.Context, phone string) (*models.PhoneOTP, error)
	DeleteByPhoneFn func(ctx context.Context, phone string) error
	DeleteExpiredFn func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockOTPStore) Upsert(ctx context.Context, otp models.PhoneOTP) error {
	return m.UpsertFn(ctx, otp)
}

func (m *mockOTPStore) GetByPhone(ctx context.Context, phone string) (*models.PhoneOTP, error) {
	return m.GetByPhoneFn(ctx, phone)
}

func (m *mockOTPStore) DeleteByPhone(ctx context.Context, phone string) error {
	if m.DeleteByPhoneFn == nil {
		return nil
	}
	return m.DeleteByPhoneFn(ctx, phone)
}

func (m *mockOTPStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return m.DeleteExpiredFn(ctx, now)
}

type mockSMSSender struct {
	SendOTPFn func(ctx context.Context, phone, code string) error
}

func (m *mockSMSSender) SendOTP(ctx context.Context, phone, code string) error {
	return m.SendOTPFn(ctx, phone, code)
}

type mockNotificationCache struct {
	UnreadCountFn       func(ctx context.Context, userID uuid.UUID) (int64, bool)
	SetUnreadCountFn    func(ctx context.Context, userID uuid.UUID, count int64)
	ForgetUnreadCountFn func(ctx context.Context, userID uuid.UUID)
}

func (m *mockNotificationCache) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, bool) {
	return m.UnreadCountFn(ctx, userID)
}

func (m *mockNotificationCache) SetUnreadCount(ctx context.Context, userID uuid.UUID, count int64) {
	m.SetUnreadCountFn(ctx, userID, count)
}

func (m *mockNotificationCache) ForgetUnreadCount(ctx context.Context, userID uuid.UUID) {
	m.ForgetUnreadCountFn(ctx, userID)
}

type mockOrderFeed struct {
	events []string
}

func (m *mockOrderFeed) BroadcastOrderEvent(eventType string, payload interface{}) {
	m.events = append(m.events, eventType)
}

type mockStatusHandler struct {
	events []models.OrderStatusChanged
}

func (m *mockStatusHandler) HandleStatusChanged(ctx context.Context, event models.OrderStatusChanged) {
	m.events = append(m.events, event)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chai-nz/cafe-service/internal/models"
)

// GuestConfig carries the two distinct expiry windows: the table account
// lifetime and the per-diner credential window layered on top of it.
type GuestConfig struct {
	AccountTTL time.Duration
	SessionTTL time.Duration
}

// GuestService redeems invitations into table-scoped guest sessions. One
// guest account per table is shared by every diner sitting there; each diner
// gets their own short-lived credential and session id.
type GuestService struct {
	invitations InvitationStore
	users       UserStore
	tokens      *TokenService
	sessions    SessionStore
	cfg         GuestConfig
	log         *zap.Logger
	now         func() time.Time
}

// NewGuestService creates a new guest session service
func NewGuestService(invitations InvitationStore, users UserStore, tokens *TokenService, sessions SessionStore, cfg GuestConfig, log *zap.Logger) *GuestService {
	return &GuestService{
		invitations: invitations,
		users:       users,
		tokens:      tokens,
		sessions:    sessions,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

// InvitationPreview is the read-only GET response before redemption
type InvitationPreview struct {
	IssuerName  string     `json:"issuer_name"`
	TableNumber *string    `json:"table_number,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IsValid     bool       `json:"is_valid"`
}

// SessionResult is returned on redemption
type SessionResult struct {
	User        *models.User `json:"user"`
	Token       string       `json:"token"`
	SessionID   string       `json:"session_id"`
	TableNumber string       `json:"table_number"`
	ExpiresAt   time.Time    `json:"expires_at"`
	ExpiresIn   int          `json:"expires_in"`
}

// Preview returns invitation metadata without side effects
func (s *GuestService) Preview(ctx context.Context, token string) (*InvitationPreview, error) {
	inv, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInvitationNotFound
	}

	return &InvitationPreview{
		IssuerName:  inv.IssuerName,
		TableNumber: inv.TableNumber,
		ExpiresAt:   inv.ExpiresAt,
		IsValid:     inv.IsValid(s.now()),
	}, nil
}

// Redeem consumes an invitation token and issues a session. Table
// invitations stay redeemable until they expire so every diner at the table
// can scan the same QR code; legacy staff invitations are consumed on first
// use.
func (s *GuestService) Redeem(ctx context.Context, token string, tableOverride *string) (*SessionResult, error) {
	inv, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInvitationNotFound
	}
	if !inv.IsValid(s.now()) {
		return nil, ErrInvitationInvalid
	}

	if inv.Kind() == models.InvitationKindStaff {
		return s.redeemStaff(ctx, inv)
	}

	tableNumber := ""
	if inv.TableNumber != nil {
		tableNumber = *inv.TableNumber
	}
	if tableNumber == "" && tableOverride != nil {
		tableNumber = *tableOverride
	}
	if tableNumber == "" {
		return nil, ErrTableNumberRequired
	}
	if len(tableNumber) > maxTableNumberLen {
		return nil, ErrTableNumberTooLong
	}

	// Reuse the live guest account for the table; its expiry is anchored at
	// table-session start and is not refreshed by later scans.
	user, created, err := s.users.ResolveGuestForTable(ctx, tableNumber, s.now().Add(s.cfg.AccountTTL))
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info("guest account created",
			zap.String("table_number", tableNumber),
			zap.String("user_id", user.ID.String()))
	}

	sessionExpiry := s.now().Add(s.cfg.SessionTTL)
	plaintext, accessToken, err := s.tokens.Issue(ctx, user.ID,
		fmt.Sprintf("session_table_%s", tableNumber),
		[]string{models.AbilityGuestOrder, models.AbilityGuestRead},
		&sessionExpiry)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	if _, err := s.sessions.Create(ctx, models.GuestSession{
		SessionID:   sessionID,
		UserID:      user.ID,
		TableNumber: tableNumber,
		TokenID:     &accessToken.ID,
		ExpiresAt:   sessionExpiry,
	}); err != nil {
		return nil, err
	}

	return &SessionResult{
		User:        user,
		Token:       plaintext,
		SessionID:   sessionID,
		TableNumber: tableNumber,
		ExpiresAt:   sessionExpiry,
		ExpiresIn:   int(s.cfg.SessionTTL.Seconds()),
	}, nil
}

// redeemStaff handles the single-use legacy flow: the invited account logs
// in once through the link and the invitation is consumed.
func (s *GuestService) redeemStaff(ctx context.Context, inv *models.UserInvitation) (*SessionResult, error) {
	if inv.InvitedUserID == nil {
		return nil, ErrInvitationInvalid
	}

	user, err := s.users.GetByID(ctx, *inv.InvitedUserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvitationInvalid
	}

	if err := s.invitations.MarkUsed(ctx, inv.ID, s.now()); err != nil {
		return nil, err
	}

	plaintext, _, err := s.tokens.Issue(ctx, user.ID, "invitation_auth", nil, nil)
	if err != nil {
		return nil, err
	}

	return &SessionResult{
		User:  user,
		Token: plaintext,
	}, nil
}

// CleanupExpired sweeps expired guest sessions, credentials, accounts, and
// abandoned guest orders.
func (s *GuestService) CleanupExpired(ctx context.Context, orders OrderStore) error {
	now := s.now()

	if _, err := s.sessions.DeleteExpired(ctx, now); err != nil {
		return err
	}
	if _, err := s.tokens.DeleteExpired(ctx); err != nil {
		return err
	}
	if _, err := orders.DeleteAbandonedGuestOrders(ctx, now.Add(-3*time.Hour)); err != nil {
		return err
	}
	deleted, err := s.users.DeleteExpiredGuests(ctx, now)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.log.Info("cleaned up expired guest accounts", zap.Int64("count", deleted))
	}
	return nil
}

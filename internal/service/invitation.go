package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/chai-nz/cafe-service/internal/models"
)

const maxTableNumberLen = 10

// maxTokenAttempts bounds regeneration when a random token collides with an
// existing one.
const maxTokenAttempts = 5

// InvitationConfig carries invitation lifetimes and the deep-link base
type InvitationConfig struct {
	FrontendURL string
	TableTTL    time.Duration
	StaffTTL    time.Duration
}

// InvitationService issues, lists, and revokes invitation tokens. Table
// invitations gate guest sessions; legacy staff invitations provision
// accounts.
type InvitationService struct {
	invitations InvitationStore
	users       UserStore
	cfg         InvitationConfig
	log         *zap.Logger
	now         func() time.Time
}

// NewInvitationService creates a new invitation service
func NewInvitationService(invitations InvitationStore, users UserStore, cfg InvitationConfig, log *zap.Logger) *InvitationService {
	return &InvitationService{
		invitations: invitations,
		users:       users,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

// TableInvitation is the creation response, including the deep link the QR
// code encodes.
type TableInvitation struct {
	Token         string     `json:"token"`
	TableNumber   string     `json:"table_number"`
	InvitationURL string     `json:"invitation_url"`
	ExpiresAt     *time.Time `json:"expires_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// StaffInvitation is the legacy provisioning response. The password is
// returned exactly once for the admin to hand over.
type StaffInvitation struct {
	User          *models.User           `json:"user"`
	Invitation    *models.UserInvitation `json:"invitation"`
	Password      string                 `json:"password"`
	InvitationURL string                 `json:"invitation_url"`
}

// CreateTableInvitation issues a QR invitation for a table. At most one
// unexpired invitation per table may exist.
func (s *InvitationService) CreateTableInvitation(ctx context.Context, actor models.Actor, tableNumber string) (*TableInvitation, error) {
	if !actor.CanManageInvitations() {
		return nil, ErrUnauthorized
	}
	if tableNumber == "" {
		return nil, ErrTableNumberRequired
	}
	if len(tableNumber) > maxTableNumberLen {
		return nil, ErrTableNumberTooLong
	}

	token, err := s.generateUniqueToken(ctx)
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(s.cfg.TableTTL)
	created, existing, err := s.invitations.CreateForTable(ctx, models.UserInvitation{
		UserID:      actor.UserID,
		Token:       token,
		Role:        models.RoleGuest,
		TableNumber: &tableNumber,
		ExpiresAt:   &expiresAt,
	})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &TableAlreadyInvitedError{TableNumber: tableNumber, Existing: existing}
	}

	s.log.Info("table invitation created",
		zap.String("table_number", tableNumber),
		zap.Time("expires_at", expiresAt))

	return &TableInvitation{
		Token:         created.Token,
		TableNumber:   tableNumber,
		InvitationURL: s.InvitationURL(created),
		ExpiresAt:     created.ExpiresAt,
		CreatedAt:     created.CreatedAt,
	}, nil
}

// CreateStaffInvitation provisions an account and issues a single-use
// invitation for it (legacy flow).
func (s *InvitationService) CreateStaffInvitation(ctx context.Context, actor models.Actor, req models.StaffInvitationRequest) (*StaffInvitation, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if req.Name == "" || req.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidCredentials)
	}
	switch req.Role {
	case models.RoleAdmin, models.RoleShopOwner, models.RoleStaff, models.RoleCustomer:
	default:
		return nil, fmt.Errorf("invalid role %q", req.Role)
	}
	if req.TableNumber != nil && len(*req.TableNumber) > maxTableNumberLen {
		return nil, ErrTableNumberTooLong
	}

	if existing, err := s.users.GetByEmail(ctx, req.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}

	password, err := randomPassword()
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         req.Role,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.generateUniqueToken(ctx)
	if err != nil {
		return nil, err
	}

	expiresAt := req.ExpiresAt
	if expiresAt == nil {
		t := s.now().Add(s.cfg.StaffTTL)
		expiresAt = &t
	}

	invitation, err := s.invitations.Create(ctx, models.UserInvitation{
		UserID:        actor.UserID,
		InvitedUserID: &user.ID,
		Token:         token,
		Role:          req.Role,
		TableNumber:   req.TableNumber,
		ExpiresAt:     expiresAt,
	})
	if err != nil {
		return nil, err
	}

	return &StaffInvitation{
		User:          user,
		Invitation:    invitation,
		Password:      password,
		InvitationURL: s.InvitationURL(invitation),
	}, nil
}

// InvitationURL builds the deep link encoded into the QR code. Rendering the
// QR image itself is the frontend's job.
func (s *InvitationService) InvitationURL(inv *models.UserInvitation) string {
	u := s.cfg.FrontendURL + "/guest-login?token=" + url.QueryEscape(inv.Token)
	if inv.TableNumber != nil && *inv.TableNumber != "" {
		u += "&table=" + url.QueryEscape(*inv.TableNumber)
	}
	return u
}

// Show retrieves an invitation by token
func (s *InvitationService) Show(ctx context.Context, token string) (*models.UserInvitation, error) {
	inv, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInvitationNotFound
	}
	return inv, nil
}

// List retrieves all invitations
func (s *InvitationService) List(ctx context.Context) ([]models.UserInvitation, error) {
	return s.invitations.List(ctx)
}

// ListByTable retrieves the live invitations for one table
func (s *InvitationService) ListByTable(ctx context.Context, tableNumber string) ([]models.UserInvitation, error) {
	return s.invitations.ListLiveByTable(ctx, tableNumber, s.now())
}

// Revoke deletes an invitation, returning its table number
func (s *InvitationService) Revoke(ctx context.Context, actor models.Actor, token string) (*models.UserInvitation, error) {
	if !actor.CanManageInvitations() {
		return nil, ErrUnauthorized
	}

	inv, err := s.invitations.DeleteByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInvitationNotFound
	}
	return inv, nil
}

// BulkRevoke deletes a batch of invitations by token
func (s *InvitationService) BulkRevoke(ctx context.Context, actor models.Actor, tokens []string) (int64, error) {
	if !actor.CanManageInvitations() {
		return 0, ErrUnauthorized
	}
	return s.invitations.DeleteByTokens(ctx, tokens)
}

// CleanupExpired removes invitations past their expiry
func (s *InvitationService) CleanupExpired(ctx context.Context) (int64, error) {
	deleted, err := s.invitations.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.log.Info("cleaned up expired invitations", zap.Int64("count", deleted))
	}
	return deleted, nil
}

// generateUniqueToken draws random tokens until one is unused. Collisions in
// a 256-bit space are theoretical, but the check mirrors the uniqueness
// constraint on the column.
func (s *InvitationService) generateUniqueToken(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			return "", fmt.Errorf("failed to generate invitation token: %w", err)
		}
		token := hex.EncodeToString(raw)

		exists, err := s.invitations.TokenExists(ctx, token)
		if err != nil {
			return "", err
		}
		if !exists {
			return token, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique invitation token")
}

// randomPassword generates the one-time password handed to invited staff
func randomPassword() (string, error) {
	raw := make([]byte, 9)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

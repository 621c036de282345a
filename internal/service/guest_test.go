package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chai-nz/cafe-service/internal/models"
)

func tableInvitation(table string, expiresAt time.Time) *models.UserInvitation {
	return &models.UserInvitation{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Token:       "tok-table",
		Role:        models.RoleGuest,
		TableNumber: &table,
		ExpiresAt:   &expiresAt,
		IssuerName:  "Shop Owner",
	}
}

func guestServiceFixture(invitations *mockInvitationStore, users *mockUserStore, tokens *mockTokenStore, sessions *mockSessionStore) *GuestService {
	return NewGuestService(invitations, users, NewTokenService(tokens), sessions,
		GuestConfig{AccountTTL: 12 * time.Hour, SessionTTL: 2 * time.Hour},
		zap.NewNop())
}

func TestPreviewReportsValidity(t *testing.T) {
	now := time.Now()
	inv := tableInvitation("7", now.Add(time.Hour))
	invitations := &mockInvitationStore{
		GetByTokenFn: func(ctx context.Context, token string) (*models.UserInvitation, error) {
			return inv, nil
		},
	}
	svc := guestServiceFixture(invitations, &mockUserStore{}, &mockTokenStore{}, &mockSessionStore{})

	preview, err := svc.Preview(context.Background(), "tok-table")
	require.NoError(t, err)
	assert.True(t, preview.IsValid)
	assert.Equal(t, "Shop Owner", preview.IssuerName)
	require.NotNil(t, preview.TableNumber)
	assert.Equal(t, "7", *preview.TableNumber)
}

func TestRedeemUnknownToken(t *testing.T) {
	invitations := &mockInvitationStore{
		GetByTokenFn: func(ctx context.Context, token string) (*models.UserInvitation, error) {
			return nil, nil
		},
	}
	svc := guestServiceFixture(invitations, &mockUserStore{}, &mockTokenStore{}, &mockSessionStore{})

	_, err := svc.Redeem(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestRedeemExpiredInvitation(t *testing.T) {
	inv := tableInvitation("7", time.Now().Add(-time.Minute))
	invitations := &mockInvitationStore{
		GetByTokenFn: func(ctx context.Context, token string) (*models.UserInvitation, error) {
			return inv, nil
		},
	}
	svc := guestServiceFixture(invitations, &mockUserStore{}, &mockTokenStore{}, &mockSessionStore{})

	_, err := svc.Redeem(context.Background(), "tok-table", nil)
	assert.ErrorIs(t, err, ErrInvitationInvalid)
}

func TestRedeemIssuesSessionForTable(t *testing.T) {
	now := time.Now()
	inv := tableInvitation("7", now.Add(time.Hour))

	guest := &models.User{
		ID:          uuid.New(),
		Name:        "Table 7",
		Role:        models.RoleGuest,
		TableNumber: strPtr("7"),
	}

	var resolvedExpiry time.Time
	users := &mockUserStore{
		ResolveGuestForTableFn: func(ctx context.Context, tableNumber string, expiresAt time.Time) (*models.User, bool, error) {
			assert.Equal(t, "7", tableNumber)
			resolvedExpiry = expiresAt
			return guest, true, nil
		},
	}

	var issuedToken models.AccessToken
	tokens := &mockTokenStore{
		CreateFn: func(ctx context.Context, token models.AccessToken) (*models.AccessToken, error) {
			issuedToken = token
			token.ID = uuid.New()
			return &token, nil
		},
	}

	var createdSession models.GuestSession
	sessions := &mockSessionStore{
		CreateFn: func(ctx context.Context, session models.GuestSession) (*models.GuestSession, error) {
			createdSession = session
			return &session, nil
		},
	}

	invitations := &mockInvitationStore{
		GetByTokenFn: func(ctx context.Context, token string) (*models.UserInvitation, error) {
			return inv, nil
		},
	}

	svc := guestServiceFixture(invitations, users, tokens, sessions)

	result, err := svc.Redeem(context.Background(), "tok-table", nil)
	require.NoError(t, err)

	assert.Equal(t, guest.ID, result.User.ID)
	assert.Equal(t, "7", result.TableNumber)
	assert.NotEmpty(t, result.Token)
	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, int((2 * time.Hour).Seconds()), result.ExpiresIn)

	// Account window is longer than the per-diner credential window
	assert.WithinDuration(t, now.Add(12*time.Hour), resolvedExpiry, time.Minute)
	require.NotNil(t, issuedToken.ExpiresAt)
	assert.WithinDuration(t, now.Add(2*time.Hour), *issuedToken.ExpiresAt, time.Minute)
	assert.ElementsMatch(t, []string{models.AbilityGuestOrder, models.AbilityGuestRead}, []string(issuedToken.Abilities))

	assert.Equal(t, guest.ID, createdSession.UserID)
	assert.Equal(t, "7", createdSession.TableNumber)
	assert.Equal(t, result.SessionID, createdSession.SessionID)
}

func TestRedeemUsesTableOverrideWhenInvitationCarriesNone(t *testing.T) {
	now := time.Now()
	expiresAt := now.Add(time.Hour)
	inv := &models.UserInvitation{
		ID:        uuid.New(),
		Token:     "tok-open",
		Role:      models.RoleGuest,
		ExpiresAt: &expiresAt,
	}

	invitations := &mockInvitationStore{
		GetByTokenFn: func(ctx context.Context, token string) (*models.UserInvitation, error) {
			return inv, nil
		},
	}
	guest := &models.User{ID: uuid.New(), Role: models.RoleGuest, TableNumber: strPtr("5")}
	users := &mockUserStore{
		ResolveGuestForTableFn: func(ctx context.Context, tableNumber string, expiresAt time.Time) (*models.User, bool, error) {
			assert.Equal(t, "5", tableNumber, "the client-supplied table number is honored")
			return guest, true, nil
		},
	}
	tokens := &mockTokenStore{
		CreateFn: func(ctx context.Context, token models.AccessToken) (*models.AccessToken, error) {
			token.ID = uuid.New()
			return &token, nil
		},
	}
	sessions := &mockSessionStore{
		CreateFn: func(ctx context.Context, session models.GuestSession) (*models.GuestSession, error) {
			return &session, nil
		},
	}

	svc := guestServiceFixture(invitations, users, tokens, sessions)

	result, err := svc.Redeem(context.Background(), "tok-open", strPtr("5"))
	require.NoError(t, err)
	assert.Equal(t, "5", result.TableNumber)
	assert.NotEmpty(t, result.Token)
	assert.NotEmpty(t, result.SessionID)
}

func TestRedeemRequiresTableNumber(t *testing.T) {
	now := time.Now()
	expiresAt := now.Add(time.Hour)
	inv := &models.UserInvitation{
		ID:        uuid.New(),
		Token:     "tok-open",
		Role:      models.RoleGuest,
		ExpiresAt: &expiresAt,
	}

	invitations := &mockInvitationStore{
		GetByTokenFn: func(ctx context.Context, token string) (*models.UserInvitation, error) {
			return inv, nil
		},
	}
	svc := guestServiceFixture(invitations, &mockUserStore{}, &mockTokenStore{}, &mockSessionStore{})

	// Neither the invitation nor the request names a table
	_, err := svc.Redeem(context.Background(), "tok-open", nil)
	assert.ErrorIs(t, err, ErrTableNumberRequired)
}

func TestRedeemRejectsOverlongTableNumber(t *testing.T) {
	now := time.Now()
	inv := tableInvitation("12345678901", now.Add(time.Hour))
	invitations := &mockInvitationStore{
		GetByTokenFn: func(ctx context.Context, token string) (*models.UserInvitation, error) {
			return inv, nil
		},
	}
	svc := guestServiceFixture(invitations, &mockUserStore{}, &mockTokenStore{}, &mockSessionStore{})

	_, err := svc.Redeem(context.Background(), "tok-table", nil)
	assert.ErrorIs(t, err, ErrTableNumberTooLong)
}

func TestRedeemStaffInvitationIsConsumed(t *testing.T) {
	now := time.Now()
	expiresAt := now.Add(time.Hour)
	staffUser := &models.User{ID: uuid.New(), Name: "New Staff", Role: models.RoleStaff}

	inv := &models.UserInvitation{
		ID:            uuid.New(),
		Token:         "tok-staff",
		Role:          models.RoleStaff,
		InvitedUserID: &staffUser.ID,
		ExpiresAt:     &expiresAt,
	}

	marked := false
	invitations := &mockInvitationStore{
		GetByTokenFn: func(ctx context.Context, token string) (*models.UserInvitation, error) {
			return inv, nil
		},
		MarkUsedFn: func(ctx context.Context, id uuid.UUID, at time.Time) error {
			assert.Equal(t, inv.ID, id)
			marked = true
			return nil
		},
	}
	users := &mockUserStore{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return staffUser, nil
		},
	}
	tokens := &mockTokenStore{
		CreateFn: func(ctx context.Context, token models.AccessToken) (*models.AccessToken, error) {
			assert.Nil(t, token.ExpiresAt, "staff login tokens carry no session window")
			token.ID = uuid.New()
			return &token, nil
		},
	}

	svc := guestServiceFixture(invitations, users, tokens, &mockSessionStore{})

	result, err := svc.Redeem(context.Background(), "tok-staff", nil)
	require.NoError(t, err)
	assert.True(t, marked, "staff invitations are single-use")
	assert.Equal(t, staffUser.ID, result.User.ID)
	assert.NotEmpty(t, result.Token)
}

func TestRedeemUsedStaffInvitationRejected(t *testing.T) {
	now := time.Now()
	expiresAt := now.Add(time.Hour)
	usedAt := now.Add(-time.Hour)
	userID := uuid.New()

	inv := &models.UserInvitation{
		ID:            uuid.New(),
		Token:         "tok-staff",
		Role:          models.RoleStaff,
		InvitedUserID: &userID,
		ExpiresAt:     &expiresAt,
		UsedAt:        &usedAt,
	}

	invitations := &mockInvitationStore{
		GetByTokenFn: func(ctx context.Context, token string) (*models.UserInvitation, error) {
			return inv, nil
		},
	}
	svc := guestServiceFixture(invitations, &mockUserStore{}, &mockTokenStore{}, &mockSessionStore{})

	_, err := svc.Redeem(context.Background(), "tok-staff", nil)
	assert.ErrorIs(t, err, ErrInvitationInvalid)
}

func TestCleanupExpiredSweepsEverything(t *testing.T) {
	var sweptSessions, sweptTokens, sweptOrders, sweptGuests bool

	sessions := &mockSessionStore{
		DeleteExpiredFn: func(ctx context.Context, now time.Time) (int64, error) {
			sweptSessions = true
			return 2, nil
		},
	}
	tokens := &mockTokenStore{
		DeleteExpiredFn: func(ctx context.Context, now time.Time) (int64, error) {
			sweptTokens = true
			return 2, nil
		},
	}
	users := &mockUserStore{
		DeleteExpiredGuestsFn: func(ctx context.Context, now time.Time) (int64, error) {
			sweptGuests = true
			return 1, nil
		},
	}
	orders := &mockOrderStore{
		DeleteAbandonedGuestOrdersFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			sweptOrders = true
			assert.WithinDuration(t, time.Now().Add(-3*time.Hour), cutoff, time.Minute)
			return 1, nil
		},
	}

	svc := guestServiceFixture(&mockInvitationStore{}, users, tokens, sessions)

	err := svc.CleanupExpired(context.Background(), orders)
	require.NoError(t, err)
	assert.True(t, sweptSessions)
	assert.True(t, sweptTokens)
	assert.True(t, sweptOrders)
	assert.True(t, sweptGuests)
}

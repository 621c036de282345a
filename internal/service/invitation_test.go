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

func ownerActor() models.Actor {
	return models.Actor{UserID: uuid.New(), Role: models.RoleShopOwner}
}

func adminActor() models.Actor {
	return models.Actor{UserID: uuid.New(), Role: models.RoleAdmin}
}

func invitationServiceFixture(invitations *mockInvitationStore, users *mockUserStore) *InvitationService {
	return NewInvitationService(invitations, users, InvitationConfig{
		FrontendURL: "https://order.example.com",
		TableTTL:    24 * time.Hour,
		StaffTTL:    7 * 24 * time.Hour,
	}, zap.NewNop())
}

func TestCreateTableInvitationRequiresManager(t *testing.T) {
	svc := invitationServiceFixture(&mockInvitationStore{}, &mockUserStore{})

	_, err := svc.CreateTableInvitation(context.Background(), staffActor(), "7")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateTableInvitationValidatesTableNumber(t *testing.T) {
	svc := invitationServiceFixture(&mockInvitationStore{}, &mockUserStore{})

	_, err := svc.CreateTableInvitation(context.Background(), ownerActor(), "")
	assert.ErrorIs(t, err, ErrTableNumberRequired)

	_, err = svc.CreateTableInvitation(context.Background(), ownerActor(), "12345678901")
	assert.ErrorIs(t, err, ErrTableNumberTooLong)
}

func TestCreateTableInvitationSuccess(t *testing.T) {
	var captured models.UserInvitation
	invitations := &mockInvitationStore{
		TokenExistsFn: func(ctx context.Context, token string) (bool, error) {
			return false, nil
		},
		CreateForTableFn: func(ctx context.Context, inv models.UserInvitation) (*models.UserInvitation, *models.UserInvitation, error) {
			captured = inv
			inv.ID = uuid.New()
			inv.CreatedAt = time.Now()
			return &inv, nil, nil
		},
	}
	svc := invitationServiceFixture(invitations, &mockUserStore{})

	actor := ownerActor()
	created, err := svc.CreateTableInvitation(context.Background(), actor, "7")
	require.NoError(t, err)

	assert.Equal(t, "7", created.TableNumber)
	assert.Len(t, created.Token, 64, "32 random bytes, hex encoded")
	assert.Contains(t, created.InvitationURL, "https://order.example.com/guest-login?token=")
	assert.Contains(t, created.InvitationURL, "&table=7")
	require.NotNil(t, created.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *created.ExpiresAt, time.Minute)

	assert.Equal(t, actor.UserID, captured.UserID)
	assert.Equal(t, models.RoleGuest, captured.Role)
}

func TestCreateTableInvitationConflict(t *testing.T) {
	existing := &models.UserInvitation{ID: uuid.New(), Token: "existing-token"}
	invitations := &mockInvitationStore{
		TokenExistsFn: func(ctx context.Context, token string) (bool, error) {
			return false, nil
		},
		CreateForTableFn: func(ctx context.Context, inv models.UserInvitation) (*models.UserInvitation, *models.UserInvitation, error) {
			return nil, existing, nil
		},
	}
	svc := invitationServiceFixture(invitations, &mockUserStore{})

	_, err := svc.CreateTableInvitation(context.Background(), ownerActor(), "7")

	var conflict *TableAlreadyInvitedError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "7", conflict.TableNumber)
	assert.Equal(t, "existing-token", conflict.Existing.Token)
}

func TestGenerateUniqueTokenRetriesOnCollision(t *testing.T) {
	calls := 0
	invitations := &mockInvitationStore{
		TokenExistsFn: func(ctx context.Context, token string) (bool, error) {
			calls++
			return calls < 3, nil
		},
		CreateForTableFn: func(ctx context.Context, inv models.UserInvitation) (*models.UserInvitation, *models.UserInvitation, error) {
			return &inv, nil, nil
		},
	}
	svc := invitationServiceFixture(invitations, &mockUserStore{})

	_, err := svc.CreateTableInvitation(context.Background(), ownerActor(), "7")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestCreateStaffInvitationRequiresAdmin(t *testing.T) {
	svc := invitationServiceFixture(&mockInvitationStore{}, &mockUserStore{})

	_, err := svc.CreateStaffInvitation(context.Background(), ownerActor(), models.StaffInvitationRequest{
		Name:  "New Staff",
		Email: "staff@example.com",
		Role:  models.RoleStaff,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateStaffInvitationProvisionsAccount(t *testing.T) {
	var createdUser models.User
	users := &mockUserStore{
		GetByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
			return nil, nil
		},
		CreateFn: func(ctx context.Context, user models.User) (*models.User, error) {
			createdUser = user
			user.ID = uuid.New()
			return &user, nil
		},
	}
	invitations := &mockInvitationStore{
		TokenExistsFn: func(ctx context.Context, token string) (bool, error) {
			return false, nil
		},
		CreateFn: func(ctx context.Context, inv models.UserInvitation) (*models.UserInvitation, error) {
			inv.ID = uuid.New()
			return &inv, nil
		},
	}
	svc := invitationServiceFixture(invitations, users)

	result, err := svc.CreateStaffInvitation(context.Background(), adminActor(), models.StaffInvitationRequest{
		Name:  "New Staff",
		Email: "staff@example.com",
		Role:  models.RoleStaff,
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleStaff, createdUser.Role)
	assert.NotEmpty(t, createdUser.PasswordHash)
	assert.NotEmpty(t, result.Password, "one-time password is returned exactly once")
	assert.NotEqual(t, result.Password, createdUser.PasswordHash)
	require.NotNil(t, result.Invitation.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *result.Invitation.ExpiresAt, time.Minute)
}

func TestCreateStaffInvitationRejectsTakenEmail(t *testing.T) {
	users := &mockUserStore{
		GetByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: uuid.New(), Email: email}, nil
		},
	}
	svc := invitationServiceFixture(&mockInvitationStore{}, users)

	_, err := svc.CreateStaffInvitation(context.Background(), adminActor(), models.StaffInvitationRequest{
		Name:  "New Staff",
		Email: "staff@example.com",
		Role:  models.RoleStaff,
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRevokeRequiresManager(t *testing.T) {
	svc := invitationServiceFixture(&mockInvitationStore{}, &mockUserStore{})

	_, err := svc.Revoke(context.Background(), guestActor(), "tok")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRevokeUnknownToken(t *testing.T) {
	invitations := &mockInvitationStore{
		DeleteByTokenFn: func(ctx context.Context, token string) (*models.UserInvitation, error) {
			return nil, nil
		},
	}
	svc := invitationServiceFixture(invitations, &mockUserStore{})

	_, err := svc.Revoke(context.Background(), ownerActor(), "tok")
	assert.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestInvitationURLOmitsTableWhenAbsent(t *testing.T) {
	svc := invitationServiceFixture(&mockInvitationStore{}, &mockUserStore{})

	url := svc.InvitationURL(&models.UserInvitation{Token: "abc"})
	assert.Equal(t, "https://order.example.com/guest-login?token=abc", url)
}

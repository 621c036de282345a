package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/chai-nz/cafe-service/internal/models"
)

func authServiceFixture(users *mockUserStore, tokens *mockTokenStore, otps *mockOTPStore, sms SMSSender) *AuthService {
	if sms == nil {
		sms = NewLogSMSSender(zap.NewNop())
	}
	return NewAuthService(users, NewTokenService(tokens), otps, sms,
		JWTConfig{Secret: "test-secret", ExpiresIn: 24}, zap.NewNop())
}

func TestRegisterCreatesCustomer(t *testing.T) {
	var created models.User
	users := &mockUserStore{
		GetByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
			return nil, nil
		},
		CreateFn: func(ctx context.Context, user models.User) (*models.User, error) {
			created = user
			user.ID = uuid.New()
			return &user, nil
		},
	}
	svc := authServiceFixture(users, &mockTokenStore{}, &mockOTPStore{}, nil)

	token, user, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Alex",
		Email:    "alex@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("password123")))
}

func TestRegisterRejectsPrivilegedRole(t *testing.T) {
	users := &mockUserStore{
		GetByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
			return nil, nil
		},
	}
	svc := authServiceFixture(users, &mockTokenStore{}, &mockOTPStore{}, nil)

	_, _, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Sneaky",
		Email:    "sneaky@example.com",
		Password: "password123",
		Role:     models.RoleAdmin,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegisterRejectsShortPasswordAndTakenEmail(t *testing.T) {
	users := &mockUserStore{
		GetByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
			if email == "taken@example.com" {
				return &models.User{ID: uuid.New(), Email: email}, nil
			}
			return nil, nil
		},
	}
	svc := authServiceFixture(users, &mockTokenStore{}, &mockOTPStore{}, nil)

	_, _, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: "Alex", Email: "alex@example.com", Password: "short",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Register(context.Background(), models.RegisterRequest{
		Name: "Alex", Email: "taken@example.com", Password: "password123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginVerifiesPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)

	users := &mockUserStore{
		GetByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
			if email != "alex@example.com" {
				return nil, nil
			}
			return &models.User{ID: uuid.New(), Email: email, PasswordHash: hash, Role: models.RoleCustomer}, nil
		},
	}
	svc := authServiceFixture(users, &mockTokenStore{}, &mockOTPStore{}, nil)

	token, user, err := svc.Login(context.Background(), "alex@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alex@example.com", user.Email)

	_, _, err = svc.Login(context.Background(), "alex@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSendOTPUpsertsAndDelivers(t *testing.T) {
	var stored models.PhoneOTP
	otps := &mockOTPStore{
		UpsertFn: func(ctx context.Context, otp models.PhoneOTP) error {
			stored = otp
			return nil
		},
	}
	var sentCode string
	sms := &mockSMSSender{
		SendOTPFn: func(ctx context.Context, phone, code string) error {
			sentCode = code
			return nil
		},
	}
	svc := authServiceFixture(&mockUserStore{}, &mockTokenStore{}, otps, sms)

	err := svc.SendOTP(context.Background(), "+6421555123", "Alex")
	require.NoError(t, err)

	assert.Len(t, stored.Code, 6)
	assert.Equal(t, stored.Code, sentCode)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), stored.ExpiresAt, time.Minute)
}

func TestVerifyOTPRegistersNewPhoneUser(t *testing.T) {
	name := "Alex"
	otps := &mockOTPStore{
		GetByPhoneFn: func(ctx context.Context, phone string) (*models.PhoneOTP, error) {
			return &models.PhoneOTP{
				Phone:     phone,
				Code:      "123456",
				Name:      &name,
				ExpiresAt: time.Now().Add(5 * time.Minute),
			}, nil
		},
	}
	var created models.User
	users := &mockUserStore{
		GetByPhoneFn: func(ctx context.Context, phone string) (*models.User, error) {
			return nil, nil
		},
		CreateFn: func(ctx context.Context, user models.User) (*models.User, error) {
			created = user
			user.ID = uuid.New()
			return &user, nil
		},
	}
	svc := authServiceFixture(users, &mockTokenStore{}, otps, nil)

	token, user, err := svc.VerifyOTP(context.Background(), "+6421555123", "123456")
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	assert.Equal(t, "Alex", user.Name)
	assert.Equal(t, models.RoleCustomer, created.Role)
	assert.NotNil(t, created.PhoneVerifiedAt)
	assert.Contains(t, created.Email, "phone_user_6421555123_")
}

func TestVerifyOTPRejectsWrongOrExpiredCode(t *testing.T) {
	name := "Alex"
	expired := time.Now().Add(-time.Minute)
	otps := &mockOTPStore{
		GetByPhoneFn: func(ctx context.Context, phone string) (*models.PhoneOTP, error) {
			if phone == "expired" {
				return &models.PhoneOTP{Phone: phone, Code: "123456", Name: &name, ExpiresAt: expired}, nil
			}
			return &models.PhoneOTP{Phone: phone, Code: "123456", Name: &name, ExpiresAt: time.Now().Add(time.Minute)}, nil
		},
	}
	svc := authServiceFixture(&mockUserStore{}, &mockTokenStore{}, otps, nil)

	_, _, err := svc.VerifyOTP(context.Background(), "+6421555123", "999999")
	assert.ErrorIs(t, err, ErrOTPInvalid)

	_, _, err = svc.VerifyOTP(context.Background(), "expired", "123456")
	assert.ErrorIs(t, err, ErrOTPInvalid)
}

func TestResolveActorFromJWT(t *testing.T) {
	userID := uuid.New()
	svc := authServiceFixture(&mockUserStore{}, &mockTokenStore{}, &mockOTPStore{}, nil)

	jwt, err := svc.generateJWT(userID, models.RoleStaff)
	require.NoError(t, err)

	actor, err := svc.ResolveActor(context.Background(), jwt)
	require.NoError(t, err)
	assert.Equal(t, userID, actor.UserID)
	assert.Equal(t, models.RoleStaff, actor.Role)
	assert.Nil(t, actor.TokenID, "JWT actors carry no opaque token")
}

func TestResolveActorFromOpaqueToken(t *testing.T) {
	accountExpiry := time.Now().Add(12 * time.Hour)
	guest := &models.User{
		ID:          uuid.New(),
		Role:        models.RoleGuest,
		TableNumber: strPtr("7"),
		ExpiresAt:   &accountExpiry,
	}

	var storedHash string
	tokenID := uuid.New()
	sessionExpiry := time.Now().Add(2 * time.Hour)
	tokens := &mockTokenStore{
		CreateFn: func(ctx context.Context, token models.AccessToken) (*models.AccessToken, error) {
			storedHash = token.TokenHash
			token.ID = tokenID
			return &token, nil
		},
		GetByHashFn: func(ctx context.Context, hash string) (*models.AccessToken, error) {
			if hash != storedHash {
				return nil, nil
			}
			return &models.AccessToken{ID: tokenID, UserID: guest.ID, TokenHash: hash, ExpiresAt: &sessionExpiry}, nil
		},
	}
	users := &mockUserStore{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return guest, nil
		},
	}
	svc := authServiceFixture(users, tokens, &mockOTPStore{}, nil)

	plaintext, _, err := NewTokenService(tokens).Issue(context.Background(), guest.ID, "test", nil, &sessionExpiry)
	require.NoError(t, err)

	actor, err := svc.ResolveActor(context.Background(), plaintext)
	require.NoError(t, err)
	assert.Equal(t, guest.ID, actor.UserID)
	assert.Equal(t, models.RoleGuest, actor.Role)
	require.NotNil(t, actor.TokenID)
	assert.Equal(t, tokenID, *actor.TokenID)
	require.NotNil(t, actor.TokenExpiresAt)
	require.NotNil(t, actor.AccountExpiresAt)
	require.NotNil(t, actor.TableNumber)
	assert.Equal(t, "7", *actor.TableNumber)
}

func TestResolveActorRejectsGarbage(t *testing.T) {
	tokens := &mockTokenStore{
		GetByHashFn: func(ctx context.Context, hash string) (*models.AccessToken, error) {
			return nil, nil
		},
	}
	svc := authServiceFixture(&mockUserStore{}, tokens, &mockOTPStore{}, nil)

	_, err := svc.ResolveActor(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutRevokesOpaqueToken(t *testing.T) {
	deleted := false
	tokenID := uuid.New()
	tokens := &mockTokenStore{
		DeleteFn: func(ctx context.Context, id uuid.UUID) error {
			assert.Equal(t, tokenID, id)
			deleted = true
			return nil
		},
	}
	svc := authServiceFixture(&mockUserStore{}, tokens, &mockOTPStore{}, nil)

	err := svc.Logout(context.Background(), models.Actor{UserID: uuid.New(), TokenID: &tokenID})
	require.NoError(t, err)
	assert.True(t, deleted)

	// JWT sessions have nothing to revoke
	err = svc.Logout(context.Background(), models.Actor{UserID: uuid.New()})
	assert.NoError(t, err)
}

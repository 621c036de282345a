package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/nanorand/nanorand"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/chai-nz/cafe-service/internal/models"
)

const otpTTL = 10 * time.Minute

// JWTConfig holds configuration for JWT token generation
type JWTConfig struct {
	Secret    string
	ExpiresIn int // hours
}

// AuthService handles registration, email/password login, and phone OTP
// login. Staff and customers get stateless JWTs; guest credentials are
// issued by the guest service through the token store so they can be
// revoked server-side.
type AuthService struct {
	users     UserStore
	tokens    *TokenService
	otps      OTPStore
	sms       SMSSender
	jwtConfig JWTConfig
	log       *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(users UserStore, tokens *TokenService, otps OTPStore, sms SMSSender, jwtConfig JWTConfig, log *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		otps:      otps,
		sms:       sms,
		jwtConfig: jwtConfig,
		log:       log,
		now:       time.Now,
	}
}

// Claims represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// HashPassword hashes a password with bcrypt
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Register creates a new account. Role defaults to customer; privileged
// roles can only be granted through the invitation flow.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (string, *models.User, error) {
	if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
		return "", nil, ErrInvalidCredentials
	}

	if existing, err := s.users.GetByEmail(ctx, req.Email); err != nil {
		return "", nil, err
	} else if existing != nil {
		return "", nil, ErrEmailTaken
	}

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if role != models.RoleCustomer {
		return "", nil, ErrUnauthorized
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return "", nil, err
	}

	user, err := s.users.Create(ctx, models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.generateJWT(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Login authenticates a user and returns a JWT token
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateJWT(user.ID, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, user, nil
}

// SendOTP issues a one-time code for a phone number and hands it to the SMS
// collaborator. The name is stored so a first-time caller can be registered
// on verification.
func (s *AuthService) SendOTP(ctx context.Context, phone, name string) error {
	if phone == "" || name == "" {
		return ErrInvalidCredentials
	}

	code, err := nanorand.Gen(6)
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	if err := s.otps.Upsert(ctx, models.PhoneOTP{
		Phone:     phone,
		Code:      code,
		Name:      &name,
		ExpiresAt: s.now().Add(otpTTL),
	}); err != nil {
		return err
	}

	if err := s.sms.SendOTP(ctx, phone, code); err != nil {
		return fmt.Errorf("failed to send otp: %w", err)
	}

	return nil
}

// VerifyOTP validates a code and logs the caller in, registering a new
// account with a synthetic email when the phone is unknown.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) (string, *models.User, error) {
	otp, err := s.otps.GetByPhone(ctx, phone)
	if err != nil {
		return "", nil, err
	}
	if otp == nil || otp.Code != code || !otp.IsValid(s.now()) {
		return "", nil, ErrOTPInvalid
	}

	user, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		return "", nil, err
	}

	if user == nil {
		if otp.Name == nil || *otp.Name == "" {
			return "", nil, ErrOTPInvalid
		}

		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, phone)
		email := fmt.Sprintf("phone_user_%s_%s@example.com", digits, uuid.NewString()[0:8])

		password, err := randomPassword()
		if err != nil {
			return "", nil, err
		}
		hash, err := HashPassword(password)
		if err != nil {
			return "", nil, err
		}

		verifiedAt := s.now()
		user, err = s.users.Create(ctx, models.User{
			Name:            *otp.Name,
			Email:           email,
			Phone:           &phone,
			PasswordHash:    hash,
			Role:            models.RoleCustomer,
			PhoneVerifiedAt: &verifiedAt,
		})
		if err != nil {
			return "", nil, err
		}
	} else if user.PhoneVerifiedAt == nil {
		if err := s.users.SetPhoneVerified(ctx, user.ID, s.now()); err != nil {
			return "", nil, err
		}
	}

	if err := s.otps.DeleteByPhone(ctx, phone); err != nil {
		s.log.Warn("failed to delete consumed otp", zap.Error(err))
	}

	token, err := s.generateJWT(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// generateJWT generates a signed token for a user
func (s *AuthService) generateJWT(userID uuid.UUID, role models.UserRole) (string, error) {
	expirationTime := s.now().Add(time.Duration(s.jwtConfig.ExpiresIn) * time.Hour)

	claims := &Claims{
		UserID: userID.String(),
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			NotBefore: jwt.NewNumericDate(s.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.Secret))
}

// ValidateJWT validates a JWT and returns its claims
func (s *AuthService) ValidateJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// ResolveActor turns a bearer credential into the request actor. JWTs are
// tried first; anything else is looked up as an opaque access token. Expiry
// of guest credentials is enforced by the guest-session middleware, which
// needs the token and account windows this populates.
func (s *AuthService) ResolveActor(ctx context.Context, bearer string) (*models.Actor, error) {
	if claims, err := s.ValidateJWT(bearer); err == nil {
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			return nil, ErrInvalidCredentials
		}
		return &models.Actor{
			UserID: userID,
			Role:   models.UserRole(claims.Role),
		}, nil
	}

	token, err := s.tokens.Validate(ctx, bearer)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	return &models.Actor{
		UserID:           user.ID,
		Role:             user.Role,
		TokenID:          &token.ID,
		TokenExpiresAt:   token.ExpiresAt,
		AccountExpiresAt: user.ExpiresAt,
		TableNumber:      user.TableNumber,
	}, nil
}

// GetUser loads the authenticated user's profile
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// Logout revokes the opaque token used for the request, when there is one.
// JWT sessions simply expire.
func (s *AuthService) Logout(ctx context.Context, actor models.Actor) error {
	if actor.TokenID == nil {
		return nil
	}
	return s.tokens.Revoke(ctx, *actor.TokenID)
}

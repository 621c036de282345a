package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chai-nz/cafe-service/internal/models"
)

// TokenService issues and validates opaque access tokens. Plaintexts are
// random and shown once; only SHA-256 hashes are stored, so a stolen table
// dump cannot be replayed.
type TokenService struct {
	store TokenStore
	now   func() time.Time
}

// NewTokenService creates a new token service
func NewTokenService(store TokenStore) *TokenService {
	return &TokenService{
		store: store,
		now:   time.Now,
	}
}

// hashToken derives the at-rest form of a plaintext token
func hashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Issue creates a credential for a user. expiresAt is the structured session
// window checked per-request by middleware; nil means no session expiry.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID, name string, abilities []string, expiresAt *time.Time) (string, *models.AccessToken, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	plaintext := hex.EncodeToString(raw)

	token, err := s.store.Create(ctx, models.AccessToken{
		UserID:    userID,
		Name:      name,
		TokenHash: hashToken(plaintext),
		Abilities: abilities,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return "", nil, err
	}

	return plaintext, token, nil
}

// Validate resolves a plaintext to its stored token. Expiry is enforced by
// the guest-session middleware, not here, so the middleware can delete the
// credential and report the dedicated session-expired error.
func (s *TokenService) Validate(ctx context.Context, plaintext string) (*models.AccessToken, error) {
	token, err := s.store.GetByHash(ctx, hashToken(plaintext))
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.store.TouchLastUsed(ctx, token.ID, s.now()); err != nil {
		return nil, err
	}

	return token, nil
}

// Revoke deletes a credential, ending its session immediately
func (s *TokenService) Revoke(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// DeleteExpired sweeps credentials past their session window
func (s *TokenService) DeleteExpired(ctx context.Context) (int64, error) {
	return s.store.DeleteExpired(ctx, s.now())
}

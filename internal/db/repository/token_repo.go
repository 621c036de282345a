package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chai-nz/cafe-service/internal/models"
)

const tokenColumns = `id, user_id, name, token_hash, abilities, expires_at, last_used_at, created_at`

// TokenRepository stores opaque access tokens (hashes only)
type TokenRepository struct {
	db *sqlx.DB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create inserts a new access token row
func (r *TokenRepository) Create(ctx context.Context, token models.AccessToken) (*models.AccessToken, error) {
	var created models.AccessToken
	err := r.db.GetContext(ctx, &created,
		`INSERT INTO access_tokens (user_id, name, token_hash, abilities, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+tokenColumns,
		token.UserID, token.Name, token.TokenHash, token.Abilities, token.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}
	return &created, nil
}

// GetByHash retrieves a token by its hash. Returns nil when unknown.
func (r *TokenRepository) GetByHash(ctx context.Context, hash string) (*models.AccessToken, error) {
	var token models.AccessToken
	err := r.db.GetContext(ctx, &token,
		`SELECT `+tokenColumns+` FROM access_tokens WHERE token_hash = $1`, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	return &token, nil
}

// TouchLastUsed records token activity
func (r *TokenRepository) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE access_tokens SET last_used_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to touch access token: %w", err)
	}
	return nil
}

// Delete removes a token, ending its session immediately
func (r *TokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM access_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete access token: %w", err)
	}
	return nil
}

// DeleteExpired removes tokens past their session window
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM access_tokens WHERE expires_at IS NOT NULL AND expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return res.RowsAffected()
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/chai-nz/cafe-service/internal/models"
)

// SessionRepository stores guest session rows, correlating a diner sitting
// with its table account and credential.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a guest session row
func (r *SessionRepository) Create(ctx context.Context, session models.GuestSession) (*models.GuestSession, error) {
	var created models.GuestSession
	err := r.db.GetContext(ctx, &created,
		`INSERT INTO guest_sessions (session_id, user_id, table_number, token_id, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, session_id, user_id, table_number, token_id, expires_at, created_at`,
		session.SessionID, session.UserID, session.TableNumber, session.TokenID, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create guest session: %w", err)
	}
	return &created, nil
}

// GetBySessionID retrieves a session by its opaque identifier. Returns nil
// when unknown.
func (r *SessionRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.GuestSession, error) {
	var session models.GuestSession
	err := r.db.GetContext(ctx, &session,
		`SELECT id, session_id, user_id, table_number, token_id, expires_at, created_at
		 FROM guest_sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get guest session: %w", err)
	}
	return &session, nil
}

// DeleteExpired removes sessions past their window
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM guest_sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

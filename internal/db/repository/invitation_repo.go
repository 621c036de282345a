package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/chai-nz/cafe-service/internal/models"
)

const invitationColumns = `id, user_id, invited_user_id, token, role, table_number, expires_at, used_at, created_at, updated_at`

// InvitationRepository handles invitation data access
type InvitationRepository struct {
	db *sqlx.DB
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *sqlx.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// CreateForTable inserts a table invitation, enforcing at most one live
// invitation per table. The advisory lock serializes concurrent creates for
// the same table; when a live invitation already exists it is returned
// instead of a new one.
func (r *InvitationRepository) CreateForTable(ctx context.Context, inv models.UserInvitation) (created, existing *models.UserInvitation, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext('guest_table:' || $1))`, *inv.TableNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to take table lock: %w", err)
	}

	var live models.UserInvitation
	err = tx.GetContext(ctx, &live,
		`SELECT `+invitationColumns+` FROM user_invitations
		 WHERE table_number = $1 AND expires_at > now()
		 ORDER BY created_at DESC
		 LIMIT 1`,
		*inv.TableNumber)
	if err == nil {
		if err = tx.Commit(); err != nil {
			return nil, nil, fmt.Errorf("failed to commit: %w", err)
		}
		return nil, &live, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("failed to look up table invitation: %w", err)
	}

	var row models.UserInvitation
	err = tx.GetContext(ctx, &row,
		`INSERT INTO user_invitations (user_id, token, role, table_number, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+invitationColumns,
		inv.UserID, inv.Token, inv.Role, inv.TableNumber, inv.ExpiresAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create table invitation: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit: %w", err)
	}

	return &row, nil, nil
}

// Create inserts a legacy staff invitation
func (r *InvitationRepository) Create(ctx context.Context, inv models.UserInvitation) (*models.UserInvitation, error) {
	var row models.UserInvitation
	err := r.db.GetContext(ctx, &row,
		`INSERT INTO user_invitations (user_id, invited_user_id, token, role, table_number, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+invitationColumns,
		inv.UserID, inv.InvitedUserID, inv.Token, inv.Role, inv.TableNumber, inv.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return &row, nil
}

// GetByToken retrieves an invitation with its issuer name. Returns nil when
// the token is unknown.
func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*models.UserInvitation, error) {
	query := `
		SELECT i.id, i.user_id, i.invited_user_id, i.token, i.role, i.table_number,
		       i.expires_at, i.used_at, i.created_at, i.updated_at,
		       u.name AS issuer_name
		FROM user_invitations i
		JOIN users u ON i.user_id = u.id
		WHERE i.token = $1
	`

	var inv models.UserInvitation
	err := r.db.GetContext(ctx, &inv, query, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return &inv, nil
}

// TokenExists reports whether a token is already in use
func (r *InvitationRepository) TokenExists(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM user_invitations WHERE token = $1)`, token)
	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return exists, nil
}

// MarkUsed stamps used_at, consuming a single-use invitation
func (r *InvitationRepository) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE user_invitations SET used_at = $2, updated_at = now() WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark invitation used: %w", err)
	}
	return nil
}

// List retrieves all invitations, newest first
func (r *InvitationRepository) List(ctx context.Context) ([]models.UserInvitation, error) {
	query := `
		SELECT i.id, i.user_id, i.invited_user_id, i.token, i.role, i.table_number,
		       i.expires_at, i.used_at, i.created_at, i.updated_at,
		       u.name AS issuer_name
		FROM user_invitations i
		JOIN users u ON i.user_id = u.id
		ORDER BY i.created_at DESC
	`

	var invitations []models.UserInvitation
	err := r.db.SelectContext(ctx, &invitations, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}

	return invitations, nil
}

// ListLiveByTable retrieves unexpired invitations for a table
func (r *InvitationRepository) ListLiveByTable(ctx context.Context, tableNumber string, now time.Time) ([]models.UserInvitation, error) {
	query := `
		SELECT i.id, i.user_id, i.invited_user_id, i.token, i.role, i.table_number,
		       i.expires_at, i.used_at, i.created_at, i.updated_at,
		       u.name AS issuer_name
		FROM user_invitations i
		JOIN users u ON i.user_id = u.id
		WHERE i.table_number = $1 AND i.expires_at > $2
		ORDER BY i.created_at DESC
	`

	var invitations []models.UserInvitation
	err := r.db.SelectContext(ctx, &invitations, query, tableNumber, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list table invitations: %w", err)
	}

	return invitations, nil
}

// DeleteByToken removes an invitation, returning the deleted row. Returns
// nil when the token is unknown.
func (r *InvitationRepository) DeleteByToken(ctx context.Context, token string) (*models.UserInvitation, error) {
	var inv models.UserInvitation
	err := r.db.GetContext(ctx, &inv,
		`DELETE FROM user_invitations WHERE token = $1 RETURNING `+invitationColumns, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete invitation: %w", err)
	}
	return &inv, nil
}

// DeleteByTokens removes a batch of invitations, returning the count
func (r *InvitationRepository) DeleteByTokens(ctx context.Context, tokens []string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_invitations WHERE token = ANY($1)`, pq.Array(tokens))
	if err != nil {
		return 0, fmt.Errorf("failed to bulk delete invitations: %w", err)
	}
	return res.RowsAffected()
}

// DeleteExpired removes invitations past their expiry
func (r *InvitationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_invitations WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invitations: %w", err)
	}
	return res.RowsAffected()
}

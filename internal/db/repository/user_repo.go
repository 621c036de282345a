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

const userColumns = `id, name, email, password_hash, phone, role, table_number, expires_at, phone_verified_at, created_at, updated_at`

// UserRepository handles user data access
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetByPhone retrieves a user by phone number
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by phone: %w", err)
	}
	return &user, nil
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user models.User) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, phone, role, table_number, expires_at, phone_verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns

	var created models.User
	err := r.db.GetContext(ctx, &created, query,
		user.Name, user.Email, user.PasswordHash, user.Phone,
		user.Role, user.TableNumber, user.ExpiresAt, user.PhoneVerifiedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &created, nil
}

// ResolveGuestForTable returns the live guest account for a table, creating
// one when none exists. A transaction-scoped advisory lock keyed on the table
// number serializes concurrent redemptions so two diners scanning at once
// resolve to the same identity. The expiry of an existing account is not
// refreshed.
func (r *UserRepository) ResolveGuestForTable(ctx context.Context, tableNumber string, expiresAt time.Time) (*models.User, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext('guest_table:' || $1))`, tableNumber)
	if err != nil {
		return nil, false, fmt.Errorf("failed to take table lock: %w", err)
	}

	var existing models.User
	err = tx.GetContext(ctx, &existing,
		`SELECT `+userColumns+` FROM users
		 WHERE role = $1 AND table_number = $2 AND expires_at > now()
		 ORDER BY created_at DESC
		 LIMIT 1`,
		models.RoleGuest, tableNumber)
	if err == nil {
		if err = tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("failed to commit: %w", err)
		}
		return &existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to look up table guest: %w", err)
	}

	// Synthetic unique email; guests never log in with it
	email := fmt.Sprintf("guest_table_%s_%s@guest.local", tableNumber, uuid.NewString()[0:8])

	var created models.User
	err = tx.GetContext(ctx, &created,
		`INSERT INTO users (name, email, password_hash, role, table_number, expires_at)
		 VALUES ($1, $2, '', $3, $4, $5)
		 RETURNING `+userColumns,
		fmt.Sprintf("Table %s", tableNumber), email, models.RoleGuest, tableNumber, expiresAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create table guest: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit: %w", err)
	}

	return &created, true, nil
}

// SetPhoneVerified marks a user's phone as verified
func (r *UserRepository) SetPhoneVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET phone_verified_at = $2, updated_at = now() WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to set phone verified: %w", err)
	}
	return nil
}

// DeleteExpiredGuests removes guest accounts whose 12h window has passed.
// Cascades drop their tokens and sessions.
func (r *UserRepository) DeleteExpiredGuests(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE role = $1 AND expires_at < $2`, models.RoleGuest, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired guests: %w", err)
	}
	return res.RowsAffected()
}

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

// OTPRepository stores one-time phone login codes, one live row per phone
type OTPRepository struct {
	db *sqlx.DB
}

// NewOTPRepository creates a new OTP repository
func NewOTPRepository(db *sqlx.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// Upsert creates or replaces the code for a phone number
func (r *OTPRepository) Upsert(ctx context.Context, otp models.PhoneOTP) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO phone_otps (phone, otp, name, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (phone) DO UPDATE
		 SET otp = EXCLUDED.otp, name = EXCLUDED.name, expires_at = EXCLUDED.expires_at, updated_at = now()`,
		otp.Phone, otp.Code, otp.Name, otp.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to upsert otp: %w", err)
	}
	return nil
}

// GetByPhone retrieves the live code row for a phone. Returns nil when absent.
func (r *OTPRepository) GetByPhone(ctx context.Context, phone string) (*models.PhoneOTP, error) {
	var otp models.PhoneOTP
	err := r.db.GetContext(ctx, &otp,
		`SELECT id, phone, otp, name, expires_at, created_at, updated_at
		 FROM phone_otps WHERE phone = $1`, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get otp: %w", err)
	}
	return &otp, nil
}

// DeleteByPhone removes a consumed code
func (r *OTPRepository) DeleteByPhone(ctx context.Context, phone string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM phone_otps WHERE phone = $1`, phone)
	if err != nil {
		return fmt.Errorf("failed to delete otp: %w", err)
	}
	return nil
}

// DeleteExpired removes codes past their expiry
func (r *OTPRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM phone_otps WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired otps: %w", err)
	}
	return res.RowsAffected()
}

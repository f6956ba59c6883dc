package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
)

// PasswordResetTokenRepository manages password reset tokens in the database
type PasswordResetTokenRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPasswordResetTokenRepository creates a new PasswordResetTokenRepository
func NewPasswordResetTokenRepository(db *pgxpool.Pool) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{db: db, sb: psql}
}

// CreateToken stores a new password reset token
func (r *PasswordResetTokenRepository) CreateToken(ctx context.Context, userID uuid.UUID, token string, expiryDate time.Time) error {
	sql, args, err := r.sb.Insert("password_reset_tokens").
		Columns("user_id", "token", "expiry_date").
		Values(userID, token, expiryDate).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create reset token query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error creating password reset token: %w", err)
	}
	return nil
}

// ConsumeToken marks an unused, unexpired token as used and returns its owner
func (r *PasswordResetTokenRepository) ConsumeToken(ctx context.Context, tx pgx.Tx, token string, now time.Time) (uuid.UUID, error) {
	sql, args, err := r.sb.Select("user_id", "expiry_date", "used").
		From("password_reset_tokens").
		Where(squirrel.Eq{"token": token}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to build get reset token query: %w", err)
	}

	q := conn(r.db, tx)
	var userID uuid.UUID
	var expiry time.Time
	var used bool
	if err := q.QueryRow(ctx, sql, args...).Scan(&userID, &expiry, &used); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, apperrors.ErrTokenNotFound
		}
		return uuid.Nil, fmt.Errorf("error retrieving password reset token: %w", err)
	}
	if used {
		return uuid.Nil, apperrors.ErrTokenRevoked
	}
	if now.After(expiry) {
		return uuid.Nil, apperrors.ErrTokenExpired
	}

	update, updateArgs, err := r.sb.Update("password_reset_tokens").
		Set("used", true).
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to build consume reset token query: %w", err)
	}
	if _, err := q.Exec(ctx, update, updateArgs...); err != nil {
		return uuid.Nil, fmt.Errorf("error marking token as used: %w", err)
	}
	return userID, nil
}

// DeleteTokensByUserID removes all tokens for a user
func (r *PasswordResetTokenRepository) DeleteTokensByUserID(ctx context.Context, userID uuid.UUID) error {
	sql, args, err := r.sb.Delete("password_reset_tokens").Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete reset tokens query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error deleting password reset tokens for user: %w", err)
	}
	return nil
}

// DeleteExpiredTokens removes expired tokens and returns how many were deleted
func (r *PasswordResetTokenRepository) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Delete("password_reset_tokens").Where(squirrel.Lt{"expiry_date": time.Now()}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete expired reset tokens query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired password reset tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

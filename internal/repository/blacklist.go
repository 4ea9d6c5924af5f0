package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AtoyanMikhail/blogauth/internal/apperrors"
	"github.com/AtoyanMikhail/blogauth/internal/logger"
	"github.com/AtoyanMikhail/blogauth/internal/models"
)

type blacklistRepo struct {
	db *sqlx.DB
	l  logger.Logger
}

func NewBlacklistRepository(db *sqlx.DB, l logger.Logger) BlacklistRepository {
	return &blacklistRepo{db: db, l: l}
}

// Insert relies on the unique refresh_token constraint: of two concurrent inserts of the
// same token exactly one reports inserted.
func (r *blacklistRepo) Insert(ctx context.Context, entry *models.BlacklistEntry) (bool, error) {
	query := `
		INSERT INTO refresh_token_blacklist (refresh_token, expiration_date)
		VALUES ($1, $2)
		ON CONFLICT (refresh_token) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, entry.RefreshToken, entry.ExpirationDate)
	if err != nil {
		r.l.Error("Failed to blacklist refresh token", logger.Error(err))
		return false, apperrors.Internal(fmt.Errorf("failed to blacklist refresh token: %w", err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Internal(fmt.Errorf("failed to get rows affected: %w", err))
	}
	return affected == 1, nil
}

func (r *blacklistRepo) Exists(ctx context.Context, refreshToken string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM refresh_token_blacklist WHERE refresh_token = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, refreshToken); err != nil {
		r.l.Error("Failed to check token blacklist status", logger.Error(err))
		return false, apperrors.Internal(fmt.Errorf("failed to check token blacklist status: %w", err))
	}
	return exists, nil
}

func (r *blacklistRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM refresh_token_blacklist WHERE expiration_date < $1`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, apperrors.Internal(fmt.Errorf("failed to clean expired blacklist entries: %w", err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Internal(fmt.Errorf("failed to get rows affected: %w", err))
	}
	return affected, nil
}

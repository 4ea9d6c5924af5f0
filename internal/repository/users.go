package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AtoyanMikhail/blogauth/internal/apperrors"
	"github.com/AtoyanMikhail/blogauth/internal/logger"
	"github.com/AtoyanMikhail/blogauth/internal/models"
)

const userColumns = `id, login, email, password_hash, role, created_at, is_banned, ban_date, ban_reason,
	confirmation_code, expiration_date, is_confirmed, is_confirmed_date,
	recovery_code, recovery_expiration_date, ip, user_agent`

type userRepo struct {
	db *sqlx.DB
	l  logger.Logger
}

func NewUserRepository(db *sqlx.DB, l logger.Logger) UserRepository {
	return &userRepo{db: db, l: l}
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (login, email, password_hash, role, created_at, is_banned, ban_date, ban_reason,
			confirmation_code, expiration_date, is_confirmed, is_confirmed_date, ip, user_agent)
		VALUES (:login, :email, :password_hash, :role, :created_at, :is_banned, :ban_date, :ban_reason,
			:confirmation_code, :expiration_date, :is_confirmed, :is_confirmed_date, :ip, :user_agent)
		RETURNING id`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		r.l.Error("Failed to prepare query", logger.Error(err))
		return apperrors.Internal(fmt.Errorf("failed to prepare query: %w", err))
	}
	defer stmt.Close()

	if err := stmt.QueryRowxContext(ctx, user).Scan(&user.ID); err != nil {
		if field, ok := conflictField(err); ok {
			value := user.Login
			if field == "email" {
				value = user.Email
			}
			r.l.Warn("User already exists", logger.String("field", field))
			return apperrors.Conflict(field, value)
		}
		r.l.Error("Failed to insert user", logger.Error(err), logger.String("login", user.Login))
		return apperrors.Internal(fmt.Errorf("failed to insert user: %w", err))
	}

	r.l.Info("User created", logger.String("user_id", user.ID), logger.String("login", user.Login))
	return nil
}

func (r *userRepo) FindByLoginOrEmail(ctx context.Context, loginOrEmail string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR login = $1`
	return r.getOne(ctx, "find user by login or email", query, strings.ToLower(loginOrEmail))
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_banned = false`
	return r.getOne(ctx, "find user by id", query, id)
}

func (r *userRepo) SaFindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, "sa find user by id", query, id)
}

func (r *userRepo) FindTaken(ctx context.Context, login, email string) (bool, bool, error) {
	query := `
		SELECT
			COALESCE(bool_or(login = $1), false) AS login_taken,
			COALESCE(bool_or(email = $2), false) AS email_taken
		FROM users
		WHERE login = $1 OR email = $2`

	var taken struct {
		Login bool `db:"login_taken"`
		Email bool `db:"email_taken"`
	}
	if err := r.db.GetContext(ctx, &taken, query, strings.ToLower(login), strings.ToLower(email)); err != nil {
		return false, false, apperrors.Internal(fmt.Errorf("failed to check user existence: %w", err))
	}
	return taken.Login, taken.Email, nil
}

// FindByConfirmationCode returns the user only while the code is usable: unconfirmed users need an
// unexpired code, confirmed users always match.
func (r *userRepo) FindByConfirmationCode(ctx context.Context, code string, now time.Time) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE confirmation_code = $1
		AND ((is_confirmed = false AND expiration_date > $2) OR is_confirmed = true)`
	return r.getOne(ctx, "find user by confirmation code", query, code, now)
}

func (r *userRepo) ConfirmByCode(ctx context.Context, code string, confirmedAt time.Time) (bool, error) {
	query := `UPDATE users SET is_confirmed = true, is_confirmed_date = $2 WHERE confirmation_code = $1`

	affected, err := r.exec(ctx, "confirm user", query, code, confirmedAt)
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *userRepo) UpdateConfirmationCodeByEmail(ctx context.Context, email, code string, expiresAt time.Time) (*models.User, error) {
	query := `UPDATE users SET confirmation_code = $2, expiration_date = $3
		WHERE email = $1
		RETURNING ` + userColumns
	return r.getOne(ctx, "update confirmation code", query, strings.ToLower(email), code, expiresAt)
}

func (r *userRepo) SetRecoveryCodeByEmail(ctx context.Context, email, code string, expiresAt time.Time) (*models.User, error) {
	query := `UPDATE users SET recovery_code = $2, recovery_expiration_date = $3
		WHERE email = $1
		RETURNING ` + userColumns
	return r.getOne(ctx, "set recovery code", query, strings.ToLower(email), code, expiresAt)
}

// UpdatePasswordHashByRecoveryCode consumes the recovery code. The confirmation code and its
// expiration are left alone.
func (r *userRepo) UpdatePasswordHashByRecoveryCode(ctx context.Context, code, passwordHash string, now time.Time) (int64, error) {
	query := `UPDATE users SET password_hash = $2, recovery_code = NULL, recovery_expiration_date = NULL
		WHERE recovery_code = $1 AND recovery_expiration_date > $3`
	return r.exec(ctx, "update password by recovery code", query, code, passwordHash, now)
}

func (r *userRepo) ChangeRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	query := `UPDATE users SET role = $2 WHERE id = $1 RETURNING ` + userColumns
	return r.getOne(ctx, "change role", query, id, role)
}

func (r *userRepo) BanUnban(ctx context.Context, id string, info models.BanInfo) (bool, error) {
	query := `UPDATE users SET is_banned = $2, ban_date = $3, ban_reason = $4 WHERE id = $1`

	affected, err := r.exec(ctx, "ban user", query, id, info.IsBanned, info.BanDate, info.BanReason)
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// Delete removes the user; devices go with it through ON DELETE CASCADE.
func (r *userRepo) Delete(ctx context.Context, id string) (bool, error) {
	affected, err := r.exec(ctx, "delete user", `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *userRepo) DeleteExpiredUnconfirmed(ctx context.Context, now time.Time, limit int) (int64, error) {
	query := `
		DELETE FROM users WHERE id IN (
			SELECT id FROM users
			WHERE is_confirmed = false AND expiration_date <= $1
			ORDER BY created_at DESC
			LIMIT $2
		)`
	return r.exec(ctx, "delete expired unconfirmed users", query, now, limit)
}

func (r *userRepo) getOne(ctx context.Context, op, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.GetContext(ctx, user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.l.Error("Failed to "+op, logger.Error(err))
		return nil, apperrors.Internal(fmt.Errorf("failed to %s: %w", op, err))
	}
	return user, nil
}

func (r *userRepo) exec(ctx context.Context, op, query string, args ...interface{}) (int64, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.l.Error("Failed to "+op, logger.Error(err))
		return 0, apperrors.Internal(fmt.Errorf("failed to %s: %w", op, err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Internal(fmt.Errorf("failed to get rows affected: %w", err))
	}
	return affected, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/AtoyanMikhail/blogauth/internal/apperrors"
	"github.com/AtoyanMikhail/blogauth/internal/logger"
	"github.com/AtoyanMikhail/blogauth/internal/models"
)

type mailRepo struct {
	db *sqlx.DB
	l  logger.Logger
}

func NewMailRepository(db *sqlx.DB, l logger.Logger) MailRepository {
	return &mailRepo{db: db, l: l}
}

func (r *mailRepo) Insert(ctx context.Context, code *models.MailCode) error {
	query := `
		INSERT INTO mail_codes (code_id, email, code, kind, expiration_date, created_at, status)
		VALUES (:code_id, :email, :code, :kind, :expiration_date, :created_at, :status)`

	if _, err := r.db.NamedExecContext(ctx, query, code); err != nil {
		r.l.Error("Failed to insert mail code", logger.String("email", code.Email), logger.Error(err))
		return apperrors.Internal(fmt.Errorf("failed to insert mail code: %w", err))
	}
	return nil
}

func (r *mailRepo) ListPending(ctx context.Context, limit int) ([]*models.MailCode, error) {
	query := `
		SELECT code_id, email, code, kind, expiration_date, created_at, status
		FROM mail_codes
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2`

	codes := []*models.MailCode{}
	if err := r.db.SelectContext(ctx, &codes, query, models.MailPending, limit); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list pending mail codes: %w", err))
	}
	return codes, nil
}

func (r *mailRepo) SetStatus(ctx context.Context, codeID string, status models.MailStatus) error {
	query := `UPDATE mail_codes SET status = $2 WHERE code_id = $1`

	if _, err := r.db.ExecContext(ctx, query, codeID, status); err != nil {
		return apperrors.Internal(fmt.Errorf("failed to update mail code status: %w", err))
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/AtoyanMikhail/blogauth/internal/apperrors"
	"github.com/AtoyanMikhail/blogauth/internal/logger"
	"github.com/AtoyanMikhail/blogauth/internal/models"
)

type deviceRepo struct {
	db *sqlx.DB
	l  logger.Logger
}

func NewDeviceRepository(db *sqlx.DB, l logger.Logger) DeviceRepository {
	return &deviceRepo{db: db, l: l}
}

// Upsert keeps one row per device_id; a repeated login or refresh only moves its activity forward.
func (r *deviceRepo) Upsert(ctx context.Context, device *models.Device) error {
	query := `
		INSERT INTO devices (device_id, user_id, ip, title, last_active_date)
		VALUES (:device_id, :user_id, :ip, :title, :last_active_date)
		ON CONFLICT (device_id) DO UPDATE SET
			ip = EXCLUDED.ip,
			title = EXCLUDED.title,
			last_active_date = EXCLUDED.last_active_date`

	if _, err := r.db.NamedExecContext(ctx, query, device); err != nil {
		r.l.Error("Failed to upsert device",
			logger.String("device_id", device.DeviceID),
			logger.Error(err))
		return apperrors.Internal(fmt.Errorf("failed to upsert device: %w", err))
	}

	r.l.Debug("Device upserted",
		logger.String("device_id", device.DeviceID),
		logger.String("user_id", device.UserID))
	return nil
}

func (r *deviceRepo) FindByDeviceID(ctx context.Context, deviceID string) (*models.Device, error) {
	query := `
		SELECT device_id, user_id, ip, title, last_active_date
		FROM devices
		WHERE device_id = $1`

	device := &models.Device{}
	if err := r.db.GetContext(ctx, device, query, deviceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get device: %w", err))
	}
	return device, nil
}

func (r *deviceRepo) ListByUserID(ctx context.Context, userID string) ([]*models.Device, error) {
	query := `
		SELECT device_id, user_id, ip, title, last_active_date
		FROM devices
		WHERE user_id = $1
		ORDER BY last_active_date DESC`

	devices := []*models.Device{}
	if err := r.db.SelectContext(ctx, &devices, query, userID); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list devices for user %s: %w", userID, err))
	}
	return devices, nil
}

func (r *deviceRepo) Remove(ctx context.Context, userID, deviceID string) (int64, error) {
	query := `DELETE FROM devices WHERE user_id = $1 AND device_id = $2`
	return r.exec(ctx, "remove device", query, userID, deviceID)
}

func (r *deviceRepo) RemoveAllExcept(ctx context.Context, userID, deviceID string) (int64, error) {
	query := `DELETE FROM devices WHERE user_id = $1 AND device_id <> $2`
	return r.exec(ctx, "remove other devices", query, userID, deviceID)
}

func (r *deviceRepo) RemoveAllByUserID(ctx context.Context, userID string) (int64, error) {
	query := `DELETE FROM devices WHERE user_id = $1`
	return r.exec(ctx, "remove user devices", query, userID)
}

func (r *deviceRepo) exec(ctx context.Context, op, query string, args ...interface{}) (int64, error) {
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

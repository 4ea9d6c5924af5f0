package devices

import (
	"context"
	"time"

	"github.com/AtoyanMikhail/blogauth/internal/ability"
	"github.com/AtoyanMikhail/blogauth/internal/apperrors"
	"github.com/AtoyanMikhail/blogauth/internal/logger"
	"github.com/AtoyanMikhail/blogauth/internal/models"
	"github.com/AtoyanMikhail/blogauth/internal/repository"
)

// Registry tracks the active device sessions of users.
type Registry interface {
	Upsert(ctx context.Context, deviceID, userID, ip, userAgent string, issuedAt time.Time) error
	IsActive(ctx context.Context, payload *models.RefreshPayload) (bool, error)
	RemoveByPayload(ctx context.Context, payload *models.RefreshPayload) error
	RemoveAllExceptCurrent(ctx context.Context, userID, currentDeviceID string) (int64, error)
	RemoveAllByUser(ctx context.Context, userID string) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Device, error)
	RemoveByDeviceID(ctx context.Context, current models.CurrentUser, deviceID string) error
}

type registry struct {
	repo repository.DeviceRepository
	l    logger.Logger
}

func NewRegistry(repo repository.DeviceRepository, l logger.Logger) Registry {
	return &registry{repo: repo, l: l}
}

// Upsert stamps the device with the token's issue time so lastActiveDate matches the iat claim.
func (r *registry) Upsert(ctx context.Context, deviceID, userID, ip, userAgent string, issuedAt time.Time) error {
	return r.repo.Upsert(ctx, &models.Device{
		DeviceID:       deviceID,
		UserID:         userID,
		IP:             ip,
		Title:          userAgent,
		LastActiveDate: issuedAt,
	})
}

// IsActive reports whether the token belongs to the latest issue of a session that still
// exists. A terminated session, or a token superseded by a rotation, is inactive.
func (r *registry) IsActive(ctx context.Context, payload *models.RefreshPayload) (bool, error) {
	device, err := r.repo.FindByDeviceID(ctx, payload.DeviceID)
	if err != nil {
		return false, err
	}
	if device == nil || device.UserID != payload.UserID {
		return false, nil
	}
	return device.LastActiveDate.Equal(payload.IssuedAt), nil
}

func (r *registry) RemoveByPayload(ctx context.Context, payload *models.RefreshPayload) error {
	removed, err := r.repo.Remove(ctx, payload.UserID, payload.DeviceID)
	if err != nil {
		return err
	}
	if removed == 0 {
		r.l.Debug("No device session to remove",
			logger.String("user_id", payload.UserID),
			logger.String("device_id", payload.DeviceID))
	}
	return nil
}

func (r *registry) RemoveAllExceptCurrent(ctx context.Context, userID, currentDeviceID string) (int64, error) {
	return r.repo.RemoveAllExcept(ctx, userID, currentDeviceID)
}

func (r *registry) RemoveAllByUser(ctx context.Context, userID string) (int64, error) {
	return r.repo.RemoveAllByUserID(ctx, userID)
}

func (r *registry) ListByUser(ctx context.Context, userID string) ([]*models.Device, error) {
	return r.repo.ListByUserID(ctx, userID)
}

// RemoveByDeviceID terminates one session of the current user. Sessions of other users are
// forbidden.
func (r *registry) RemoveByDeviceID(ctx context.Context, current models.CurrentUser, deviceID string) error {
	device, err := r.repo.FindByDeviceID(ctx, deviceID)
	if err != nil {
		return err
	}
	if device == nil {
		return apperrors.NotFound("device", deviceID)
	}

	err = ability.ForUser(current).Authorize(ability.Delete, ability.Resource{
		Kind:    ability.KindDevice,
		OwnerID: device.UserID,
	})
	if err != nil {
		r.l.Warn("Device removal denied",
			logger.String("user_id", current.ID),
			logger.String("device_id", deviceID))
		return ability.Classify(err)
	}

	if _, err := r.repo.Remove(ctx, device.UserID, deviceID); err != nil {
		return err
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"github.com/AtoyanMikhail/blogauth/internal/models"
)

// Lookups return (nil, nil) when the row does not exist. Store failures come back as
// apperrors.Internal.

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByLoginOrEmail(ctx context.Context, loginOrEmail string) (*models.User, error)
	// FindByID skips banned users.
	FindByID(ctx context.Context, id string) (*models.User, error)
	SaFindByID(ctx context.Context, id string) (*models.User, error)
	FindTaken(ctx context.Context, login, email string) (loginTaken, emailTaken bool, err error)
	FindByConfirmationCode(ctx context.Context, code string, now time.Time) (*models.User, error)
	ConfirmByCode(ctx context.Context, code string, confirmedAt time.Time) (bool, error)
	UpdateConfirmationCodeByEmail(ctx context.Context, email, code string, expiresAt time.Time) (*models.User, error)
	SetRecoveryCodeByEmail(ctx context.Context, email, code string, expiresAt time.Time) (*models.User, error)
	UpdatePasswordHashByRecoveryCode(ctx context.Context, code, passwordHash string, now time.Time) (int64, error)
	ChangeRole(ctx context.Context, id string, role models.Role) (*models.User, error)
	BanUnban(ctx context.Context, id string, info models.BanInfo) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteExpiredUnconfirmed(ctx context.Context, now time.Time, limit int) (int64, error)
}

type DeviceRepository interface {
	Upsert(ctx context.Context, device *models.Device) error
	FindByDeviceID(ctx context.Context, deviceID string) (*models.Device, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.Device, error)
	Remove(ctx context.Context, userID, deviceID string) (int64, error)
	RemoveAllExcept(ctx context.Context, userID, deviceID string) (int64, error)
	RemoveAllByUserID(ctx context.Context, userID string) (int64, error)
}

type BlacklistRepository interface {
	// Insert is idempotent; inserted is false when the token was already present.
	Insert(ctx context.Context, entry *models.BlacklistEntry) (inserted bool, err error)
	Exists(ctx context.Context, refreshToken string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type MailRepository interface {
	Insert(ctx context.Context, code *models.MailCode) error
	ListPending(ctx context.Context, limit int) ([]*models.MailCode, error)
	SetStatus(ctx context.Context, codeID string, status models.MailStatus) error
}

type BlogRepository interface {
	FindByID(ctx context.Context, id string) (*models.Blog, error)
	SetBan(ctx context.Context, id string, isBanned bool, banDate *time.Time) (bool, error)
}

type PostRepository interface {
	FindByID(ctx context.Context, id string) (*models.Post, error)
	Delete(ctx context.Context, id string) (bool, error)
}

package moderation

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/AtoyanMikhail/blogauth/internal/logger"
	"github.com/AtoyanMikhail/blogauth/internal/models"
)

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, fields ...logger.Field) {}
func (m *mockLogger) Info(msg string, fields ...logger.Field)  {}
func (m *mockLogger) Warn(msg string, fields ...logger.Field)  {}
func (m *mockLogger) Error(msg string, fields ...logger.Field) {}
func (m *mockLogger) Fatal(msg string, fields ...logger.Field) {}
func (m *mockLogger) With(fields ...logger.Field) logger.Logger {
	return m
}
func (m *mockLogger) Sync() error                 { return nil }
func (m *mockLogger) SetLevel(level logger.Level) {}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) user(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByLoginOrEmail(ctx context.Context, loginOrEmail string) (*models.User, error) {
	return m.user(m.Called(ctx, loginOrEmail))
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserRepository) SaFindByID(ctx context.Context, id string) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserRepository) FindTaken(ctx context.Context, login, email string) (bool, bool, error) {
	args := m.Called(ctx, login, email)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) FindByConfirmationCode(ctx context.Context, code string, now time.Time) (*models.User, error) {
	return m.user(m.Called(ctx, code, now))
}

func (m *MockUserRepository) ConfirmByCode(ctx context.Context, code string, at time.Time) (bool, error) {
	args := m.Called(ctx, code, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateConfirmationCodeByEmail(ctx context.Context, email, code string, exp time.Time) (*models.User, error) {
	return m.user(m.Called(ctx, email, code, exp))
}

func (m *MockUserRepository) SetRecoveryCodeByEmail(ctx context.Context, email, code string, exp time.Time) (*models.User, error) {
	return m.user(m.Called(ctx, email, code, exp))
}

func (m *MockUserRepository) UpdatePasswordHashByRecoveryCode(ctx context.Context, code, hash string, now time.Time) (int64, error) {
	args := m.Called(ctx, code, hash, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ChangeRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	return m.user(m.Called(ctx, id, role))
}

func (m *MockUserRepository) BanUnban(ctx context.Context, id string, info models.BanInfo) (bool, error) {
	args := m.Called(ctx, id, info)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) DeleteExpiredUnconfirmed(ctx context.Context, now time.Time, limit int) (int64, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).(int64), args.Error(1)
}

type MockBlogRepository struct {
	mock.Mock
}

func (m *MockBlogRepository) FindByID(ctx context.Context, id string) (*models.Blog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Blog), args.Error(1)
}

func (m *MockBlogRepository) SetBan(ctx context.Context, id string, isBanned bool, banDate *time.Time) (bool, error) {
	args := m.Called(ctx, id, isBanned, banDate)
	return args.Bool(0), args.Error(1)
}

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) Upsert(ctx context.Context, deviceID, userID, ip, userAgent string, issuedAt time.Time) error {
	return m.Called(ctx, deviceID, userID, ip, userAgent, issuedAt).Error(0)
}

func (m *MockRegistry) IsActive(ctx context.Context, payload *models.RefreshPayload) (bool, error) {
	args := m.Called(ctx, payload)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistry) RemoveByPayload(ctx context.Context, payload *models.RefreshPayload) error {
	return m.Called(ctx, payload).Error(0)
}

func (m *MockRegistry) RemoveAllExceptCurrent(ctx context.Context, userID, currentDeviceID string) (int64, error) {
	args := m.Called(ctx, userID, currentDeviceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRegistry) RemoveAllByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRegistry) ListByUser(ctx context.Context, userID string) ([]*models.Device, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.Device), args.Error(1)
}

func (m *MockRegistry) RemoveByDeviceID(ctx context.Context, current models.CurrentUser, deviceID string) error {
	return m.Called(ctx, current, deviceID).Error(0)
}

type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) Compare(hash, password string) (bool, error) {
	args := m.Called(hash, password)
	return args.Bool(0), args.Error(1)
}

package http

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/AtoyanMikhail/blogauth/internal/auth"
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

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) pair(args mock.Arguments) (*models.TokenPair, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, loginOrEmail, password string, c auth.Client) (*models.TokenPair, error) {
	return m.pair(m.Called(ctx, loginOrEmail, password, c))
}

func (m *MockAuthService) Refresh(ctx context.Context, token string, c auth.Client) (*models.TokenPair, error) {
	return m.pair(m.Called(ctx, token, c))
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAuthService) LogoutOtherDevices(ctx context.Context, token string) (int64, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, userID string) (*models.MeRes, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MeRes), args.Error(1)
}

func (m *MockAuthService) CurrentUser(ctx context.Context, userID string) (*models.CurrentUser, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CurrentUser), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, r auth.Registration) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockAuthService) ConfirmRegistration(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockAuthService) ResendConfirmation(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockAuthService) PasswordRecovery(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockAuthService) NewPassword(ctx context.Context, code, password string) error {
	return m.Called(ctx, code, password).Error(0)
}

type MockModerator struct {
	mock.Mock
}

func (m *MockModerator) BanUnbanUser(ctx context.Context, current models.CurrentUser, userID string, isBanned bool, reason string) error {
	return m.Called(ctx, current, userID, isBanned, reason).Error(0)
}

func (m *MockModerator) RemoveUser(ctx context.Context, current models.CurrentUser, userID string) error {
	return m.Called(ctx, current, userID).Error(0)
}

func (m *MockModerator) ChangeRole(ctx context.Context, current models.CurrentUser, userID string, role models.Role) (*models.User, error) {
	args := m.Called(ctx, current, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockModerator) BanUnbanBlog(ctx context.Context, current models.CurrentUser, blogID string, isBanned bool) error {
	return m.Called(ctx, current, blogID, isBanned).Error(0)
}

func (m *MockModerator) DeletePost(ctx context.Context, current models.CurrentUser, postID string) error {
	return m.Called(ctx, current, postID).Error(0)
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

func (m *MockRegistry) RemoveAllExceptCurrent(ctx context.Context, userID, deviceID string) (int64, error) {
	args := m.Called(ctx, userID, deviceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRegistry) RemoveAllByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRegistry) ListByUser(ctx context.Context, userID string) ([]*models.Device, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Device), args.Error(1)
}

func (m *MockRegistry) RemoveByDeviceID(ctx context.Context, current models.CurrentUser, deviceID string) error {
	return m.Called(ctx, current, deviceID).Error(0)
}

type MockBlacklist struct {
	mock.Mock
}

func (m *MockBlacklist) Add(ctx context.Context, token string, exp time.Time) (bool, error) {
	args := m.Called(ctx, token, exp)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlacklist) Purge(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Allow(ctx context.Context, route, ip string) (bool, time.Duration, error) {
	args := m.Called(ctx, route, ip)
	return args.Bool(0), args.Get(1).(time.Duration), args.Error(2)
}

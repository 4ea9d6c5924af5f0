package auth

import (
	"context"
	"strings"
	"sync"
	"time"

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

type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*models.User{}}
}

func (m *memUsers) find(match func(*models.User) bool) *models.User {
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (m *memUsers) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = "user-" + user.Login
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) FindByLoginOrEmail(ctx context.Context, loginOrEmail string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(loginOrEmail)
	return m.find(func(u *models.User) bool { return u.Login == key || u.Email == key }), nil
}

func (m *memUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(u *models.User) bool { return u.ID == id && !u.IsBanned }), nil
}

func (m *memUsers) SaFindByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(u *models.User) bool { return u.ID == id }), nil
}

func (m *memUsers) FindTaken(ctx context.Context, login, email string) (bool, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var loginTaken, emailTaken bool
	for _, u := range m.users {
		loginTaken = loginTaken || u.Login == strings.ToLower(login)
		emailTaken = emailTaken || u.Email == strings.ToLower(email)
	}
	return loginTaken, emailTaken, nil
}

func (m *memUsers) FindByConfirmationCode(ctx context.Context, code string, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(u *models.User) bool {
		return u.ConfirmationCode == code && (u.IsConfirmed || u.ExpirationDate.After(now))
	}), nil
}

func (m *memUsers) ConfirmByCode(ctx context.Context, code string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ConfirmationCode == code {
			u.IsConfirmed = true
			u.IsConfirmedDate.Time, u.IsConfirmedDate.Valid = at, true
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) UpdateConfirmationCodeByEmail(ctx context.Context, email, code string, exp time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			u.ConfirmationCode, u.ExpirationDate = code, exp
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) SetRecoveryCodeByEmail(ctx context.Context, email, code string, exp time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			u.RecoveryCode.String, u.RecoveryCode.Valid = code, true
			u.RecoveryExpirationDate.Time, u.RecoveryExpirationDate.Valid = exp, true
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) UpdatePasswordHashByRecoveryCode(ctx context.Context, code, hash string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.RecoveryCode.Valid && u.RecoveryCode.String == code && u.RecoveryExpirationDate.Time.After(now) {
			u.PasswordHash = hash
			u.PasswordRecovery = models.PasswordRecovery{}
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memUsers) ChangeRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	u.Role = role
	cp := *u
	return &cp, nil
}

func (m *memUsers) BanUnban(ctx context.Context, id string, info models.BanInfo) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return false, nil
	}
	u.BanInfo = info
	return true, nil
}

func (m *memUsers) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[id]
	delete(m.users, id)
	return ok, nil
}

func (m *memUsers) DeleteExpiredUnconfirmed(ctx context.Context, now time.Time, limit int) (int64, error) {
	return 0, nil
}

type memBlacklist struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func newMemBlacklist() *memBlacklist {
	return &memBlacklist{tokens: map[string]time.Time{}}
}

func (m *memBlacklist) Insert(ctx context.Context, e *models.BlacklistEntry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[e.RefreshToken]; ok {
		return false, nil
	}
	m.tokens[e.RefreshToken] = e.ExpirationDate
	return true, nil
}

func (m *memBlacklist) Exists(ctx context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tokens[token]
	return ok, nil
}

func (m *memBlacklist) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type memDevices struct {
	mu      sync.Mutex
	devices map[string]*models.Device
}

func newMemDevices() *memDevices {
	return &memDevices{devices: map[string]*models.Device{}}
}

func (m *memDevices) Upsert(ctx context.Context, d *models.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	m.devices[d.DeviceID] = &cp
	return nil
}

func (m *memDevices) FindByDeviceID(ctx context.Context, id string) (*models.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *memDevices) ListByUserID(ctx context.Context, userID string) ([]*models.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Device
	for _, d := range m.devices {
		if d.UserID == userID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memDevices) removeWhere(match func(*models.Device) bool) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, d := range m.devices {
		if match(d) {
			delete(m.devices, id)
			n++
		}
	}
	return n
}

func (m *memDevices) Remove(ctx context.Context, userID, deviceID string) (int64, error) {
	return m.removeWhere(func(d *models.Device) bool { return d.UserID == userID && d.DeviceID == deviceID }), nil
}

func (m *memDevices) RemoveAllExcept(ctx context.Context, userID, deviceID string) (int64, error) {
	return m.removeWhere(func(d *models.Device) bool { return d.UserID == userID && d.DeviceID != deviceID }), nil
}

func (m *memDevices) RemoveAllByUserID(ctx context.Context, userID string) (int64, error) {
	return m.removeWhere(func(d *models.Device) bool { return d.UserID == userID }), nil
}

type sentCode struct {
	email string
	code  string
	kind  models.MailKind
}

type memMailer struct {
	mu    sync.Mutex
	codes []sentCode
}

func (m *memMailer) Enqueue(ctx context.Context, email, code string, kind models.MailKind, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes = append(m.codes, sentCode{email: email, code: code, kind: kind})
	return nil
}

func (m *memMailer) last() sentCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[len(m.codes)-1]
}

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AtoyanMikhail/blogauth/internal/apperrors"
	"github.com/AtoyanMikhail/blogauth/internal/blacklist"
	"github.com/AtoyanMikhail/blogauth/internal/devices"
	"github.com/AtoyanMikhail/blogauth/internal/hasher"
	"github.com/AtoyanMikhail/blogauth/internal/logger"
	"github.com/AtoyanMikhail/blogauth/internal/models"
	"github.com/AtoyanMikhail/blogauth/internal/repository"
)

const (
	errInvalidCredentials = "invalid login or password"
	errSessionTerminated  = "session has been terminated"
)

// TokenSigner is the part of token.Signer the orchestrator needs.
type TokenSigner interface {
	SignAccess(userID, email string) (string, error)
	SignRefresh(userID, deviceID string) (string, error)
	DecodeRefresh(token string) (*models.RefreshPayload, error)
}

// Mailer queues codes for delivery.
type Mailer interface {
	Enqueue(ctx context.Context, email, code string, kind models.MailKind, expiresAt time.Time) error
}

type Deps struct {
	Users     repository.UserRepository
	Signer    TokenSigner
	Hasher    hasher.Hasher
	Blacklist blacklist.Blacklist
	Devices   devices.Registry
	Mailer    Mailer
	CodeTTL   time.Duration
}

// Service runs the token lifecycle: issue on login, rotate on refresh, revoke on logout.
// Every refresh token it accepts is blacklisted before a successor is returned.
type Service struct {
	users     repository.UserRepository
	signer    TokenSigner
	hasher    hasher.Hasher
	blacklist blacklist.Blacklist
	devices   devices.Registry
	mailer    Mailer
	codeTTL   time.Duration
	l         logger.Logger

	now     func() time.Time
	newCode func() string
}

func NewService(d Deps, l logger.Logger) *Service {
	return &Service{
		users:     d.Users,
		signer:    d.Signer,
		hasher:    d.Hasher,
		blacklist: d.Blacklist,
		devices:   d.Devices,
		mailer:    d.Mailer,
		codeTTL:   d.CodeTTL,
		l:         l,
		now:       time.Now,
		newCode:   uuid.NewString,
	}
}

// Client describes where a request came from. It ends up in the device session.
type Client struct {
	IP        string
	UserAgent string
}

func (s *Service) Login(ctx context.Context, loginOrEmail, password string, client Client) (*models.TokenPair, error) {
	user, err := s.users.FindByLoginOrEmail(ctx, loginOrEmail)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.Unauthorized(errInvalidCredentials)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.Unauthorized(errInvalidCredentials)
	}
	if user.IsBanned {
		return nil, apperrors.Unauthorized("user is banned")
	}

	pair, err := s.issue(ctx, user, uuid.NewString(), client)
	if err != nil {
		return nil, err
	}

	s.l.Info("User logged in", logger.String("user_id", user.ID))
	return pair, nil
}

// Refresh rotates refreshToken. The caller must have verified its signature and expiry.
func (s *Service) Refresh(ctx context.Context, refreshToken string, client Client) (*models.TokenPair, error) {
	payload, err := s.revoke(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, payload.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.Unauthorized("user not found or banned")
	}

	return s.issue(ctx, user, payload.DeviceID, client)
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	payload, err := s.revoke(ctx, refreshToken)
	if err != nil {
		return err
	}

	if err := s.devices.RemoveByPayload(ctx, payload); err != nil {
		return err
	}

	s.l.Info("User logged out",
		logger.String("user_id", payload.UserID),
		logger.String("device_id", payload.DeviceID))
	return nil
}

// LogoutOtherDevices ends every session of the token's user except the token's own device.
func (s *Service) LogoutOtherDevices(ctx context.Context, refreshToken string) (int64, error) {
	payload, err := s.decode(refreshToken)
	if err != nil {
		return 0, err
	}
	if err := s.ensureActive(ctx, payload); err != nil {
		return 0, err
	}
	return s.devices.RemoveAllExceptCurrent(ctx, payload.UserID, payload.DeviceID)
}

// revoke blacklists refreshToken. Only one caller can win for a given token; the others get
// Revoked, including those racing on the same token.
func (s *Service) revoke(ctx context.Context, refreshToken string) (*models.RefreshPayload, error) {
	payload, err := s.decode(refreshToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperrors.Revoked()
	}

	if err := s.ensureActive(ctx, payload); err != nil {
		return nil, err
	}

	inserted, err := s.blacklist.Add(ctx, refreshToken, payload.ExpiresAt)
	if err != nil {
		return nil, err
	}
	if !inserted {
		s.l.Warn("Concurrent use of a refresh token", logger.String("device_id", payload.DeviceID))
		return nil, apperrors.Revoked()
	}
	return payload, nil
}

// ensureActive rejects tokens whose device session was terminated or has since been rotated.
func (s *Service) ensureActive(ctx context.Context, payload *models.RefreshPayload) error {
	active, err := s.devices.IsActive(ctx, payload)
	if err != nil {
		return err
	}
	if !active {
		s.l.Debug("Refresh token of a terminated session",
			logger.String("user_id", payload.UserID),
			logger.String("device_id", payload.DeviceID))
		return apperrors.Unauthorized(errSessionTerminated)
	}
	return nil
}

func (s *Service) issue(ctx context.Context, user *models.User, deviceID string, client Client) (*models.TokenPair, error) {
	refresh, err := s.signer.SignRefresh(user.ID, deviceID)
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	payload, err := s.signer.DecodeRefresh(refresh)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.devices.Upsert(ctx, payload.DeviceID, user.ID, client.IP, client.UserAgent, payload.IssuedAt); err != nil {
		return nil, err
	}

	access, err := s.signer.SignAccess(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) decode(refreshToken string) (*models.RefreshPayload, error) {
	payload, err := s.signer.DecodeRefresh(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Sprintf("invalid refresh token: %v", err))
	}
	return payload, nil
}

// Me returns the profile of an authenticated, non-banned user.
func (s *Service) Me(ctx context.Context, userID string) (*models.MeRes, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.Unauthorized("user not found or banned")
	}
	return &models.MeRes{Email: user.Email, Login: user.Login, UserID: user.ID}, nil
}

// CurrentUser resolves the subject of an access token.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*models.CurrentUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.Unauthorized("user not found or banned")
	}
	current := user.Current()
	return &current, nil
}

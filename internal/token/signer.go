package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/AtoyanMikhail/blogauth/internal/apperrors"
	"github.com/AtoyanMikhail/blogauth/internal/config"
	"github.com/AtoyanMikhail/blogauth/internal/models"
)

var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token is expired")
	ErrMalformed        = errors.New("token is malformed")
)

type accessClaims struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	DeviceID string `json:"deviceId"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	UserID   string `json:"userId"`
	DeviceID string `json:"deviceId"`
	jwt.RegisteredClaims
}

// Keys is the secret and lifetime of one token class.
type Keys struct {
	Secret string
	TTL    time.Duration
}

func (k Keys) check(class string) error {
	if k.Secret == "" {
		return apperrors.Configuration(class + "_SECRET")
	}
	if k.TTL <= 0 {
		return apperrors.Configuration(class + "_TTL")
	}
	return nil
}

// Signer issues and verifies access and refresh tokens. The two classes never share a secret.
type Signer struct {
	access  Keys
	refresh Keys
	now     func() time.Time
}

// NewSigner fails with a configuration error when a secret or TTL is missing.
func NewSigner(cfg config.JWTConfig) (*Signer, error) {
	s := &Signer{
		access:  Keys{Secret: cfg.AccessSecret, TTL: cfg.AccessTTL.Std()},
		refresh: Keys{Secret: cfg.RefreshSecret, TTL: cfg.RefreshTTL.Std()},
		now:     time.Now,
	}
	if err := s.access.check("ACCESS"); err != nil {
		return nil, err
	}
	if err := s.refresh.check("REFRESH"); err != nil {
		return nil, err
	}
	return s, nil
}

// SignAccess mints a fresh random deviceId for every access token.
func (s *Signer) SignAccess(userID, email string) (string, error) {
	if err := s.access.check("ACCESS"); err != nil {
		return "", err
	}

	now := s.now()
	claims := &accessClaims{
		UserID:           userID,
		Email:            email,
		DeviceID:         uuid.NewString(),
		RegisteredClaims: s.registered(userID, now, s.access.TTL),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.access.Secret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (s *Signer) SignRefresh(userID, deviceID string) (string, error) {
	if err := s.refresh.check("REFRESH"); err != nil {
		return "", err
	}

	now := s.now()
	claims := &refreshClaims{
		UserID:           userID,
		DeviceID:         deviceID,
		RegisteredClaims: s.registered(userID, now, s.refresh.TTL),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.refresh.Secret))
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, nil
}

// The jti keeps two tokens of the same device, signed within one second, distinct.
func (s *Signer) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// Verify checks the HS256 signature of tokenString against secret and its expiry, and returns
// the raw claims. VerifyAccess and VerifyRefresh bind it to the secret of their class.
func (s *Signer) Verify(tokenString, secret string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if err := s.parse(tokenString, secret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Signer) VerifyAccess(tokenString string) (*models.AccessPayload, error) {
	claims := &accessClaims{}
	if err := s.parse(tokenString, s.access.Secret, claims); err != nil {
		return nil, err
	}
	return &models.AccessPayload{
		UserID:    claims.UserID,
		Email:     claims.Email,
		DeviceID:  claims.DeviceID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *Signer) VerifyRefresh(tokenString string) (*models.RefreshPayload, error) {
	claims := &refreshClaims{}
	if err := s.parse(tokenString, s.refresh.Secret, claims); err != nil {
		return nil, err
	}
	return refreshPayload(claims), nil
}

// DecodeRefresh reads refresh claims without checking the signature or expiry.
// Only call it on tokens a guard has already verified.
func (s *Signer) DecodeRefresh(tokenString string) (*models.RefreshPayload, error) {
	claims := &refreshClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if claims.UserID == "" || claims.DeviceID == "" || claims.ExpiresAt == nil {
		return nil, ErrMalformed
	}
	return refreshPayload(claims), nil
}

func (s *Signer) parse(tokenString, secret string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

func refreshPayload(claims *refreshClaims) *models.RefreshPayload {
	p := &models.RefreshPayload{
		UserID:   claims.UserID,
		DeviceID: claims.DeviceID,
	}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p
}

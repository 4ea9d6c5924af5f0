package token

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtoyanMikhail/blogauth/internal/apperrors"
	"github.com/AtoyanMikhail/blogauth/internal/config"
)

func newTestSigner(t *testing.T) *Signer {
	s, err := NewSigner(config.JWTConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     config.Duration(10 * time.Minute),
		RefreshSecret: "refresh-secret",
		RefreshTTL:    config.Duration(20 * time.Minute),
	})
	require.NoError(t, err)
	return s
}

func TestNewSigner_MissingConfig(t *testing.T) {
	valid := config.JWTConfig{
		AccessSecret:  "a",
		AccessTTL:     config.Duration(time.Minute),
		RefreshSecret: "r",
		RefreshTTL:    config.Duration(time.Hour),
	}

	tests := []struct {
		name   string
		mutate func(*config.JWTConfig)
	}{
		{name: "access secret", mutate: func(c *config.JWTConfig) { c.AccessSecret = "" }},
		{name: "access ttl", mutate: func(c *config.JWTConfig) { c.AccessTTL = 0 }},
		{name: "refresh secret", mutate: func(c *config.JWTConfig) { c.RefreshSecret = "" }},
		{name: "refresh ttl", mutate: func(c *config.JWTConfig) { c.RefreshTTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			s, err := NewSigner(cfg)

			assert.Nil(t, s)
			assert.True(t, errors.Is(err, apperrors.ErrConfiguration))
		})
	}
}

func TestSigner_SignWithoutKeys(t *testing.T) {
	s := &Signer{now: time.Now}

	_, err := s.SignAccess("u1", "a@b.c")
	assert.True(t, errors.Is(err, apperrors.ErrConfiguration))

	_, err = s.SignRefresh("u1", "d1")
	assert.True(t, errors.Is(err, apperrors.ErrConfiguration))
}

func TestSigner_AccessRoundTrip(t *testing.T) {
	s := newTestSigner(t)

	tok, err := s.SignAccess("user-1", "user@example.com")
	require.NoError(t, err)

	payload, err := s.VerifyAccess(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", payload.UserID)
	assert.Equal(t, "user@example.com", payload.Email)
	assert.NotEmpty(t, payload.DeviceID)
	assert.WithinDuration(t, payload.IssuedAt.Add(10*time.Minute), payload.ExpiresAt, time.Second)
}

func TestSigner_AccessMintsFreshDeviceID(t *testing.T) {
	s := newTestSigner(t)

	first, err := s.SignAccess("user-1", "user@example.com")
	require.NoError(t, err)
	second, err := s.SignAccess("user-1", "user@example.com")
	require.NoError(t, err)

	p1, err := s.VerifyAccess(first)
	require.NoError(t, err)
	p2, err := s.VerifyAccess(second)
	require.NoError(t, err)

	assert.NotEqual(t, p1.DeviceID, p2.DeviceID)
}

func TestSigner_RefreshRoundTrip(t *testing.T) {
	s := newTestSigner(t)

	tok, err := s.SignRefresh("user-1", "device-1")
	require.NoError(t, err)

	payload, err := s.VerifyRefresh(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", payload.UserID)
	assert.Equal(t, "device-1", payload.DeviceID)
	assert.WithinDuration(t, payload.IssuedAt.Add(20*time.Minute), payload.ExpiresAt, time.Second)

	decoded, err := s.DecodeRefresh(tok)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestSigner_SameDeviceTokensAreDistinct(t *testing.T) {
	s := newTestSigner(t)

	first, err := s.SignRefresh("user-1", "device-1")
	require.NoError(t, err)
	second, err := s.SignRefresh("user-1", "device-1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSigner_Verify(t *testing.T) {
	s := newTestSigner(t)

	access, err := s.SignAccess("user-1", "user@example.com")
	require.NoError(t, err)
	refresh, err := s.SignRefresh("user-1", "device-1")
	require.NoError(t, err)

	claims, err := s.Verify(access, "access-secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["userId"])
	assert.Equal(t, "user@example.com", claims["email"])

	claims, err = s.Verify(refresh, "refresh-secret")
	require.NoError(t, err)
	assert.Equal(t, "device-1", claims["deviceId"])

	_, err = s.Verify(access, "refresh-secret")
	assert.ErrorIs(t, err, ErrInvalidSignature)
	_, err = s.Verify(refresh, "access-secret")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestSigner_IndependentSecrets(t *testing.T) {
	s := newTestSigner(t)

	access, err := s.SignAccess("user-1", "user@example.com")
	require.NoError(t, err)
	refresh, err := s.SignRefresh("user-1", "device-1")
	require.NoError(t, err)

	_, err = s.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = s.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestSigner_Expired(t *testing.T) {
	s := newTestSigner(t)
	issued := time.Now().Add(-time.Hour)
	s.now = func() time.Time { return issued }

	refresh, err := s.SignRefresh("user-1", "device-1")
	require.NoError(t, err)
	access, err := s.SignAccess("user-1", "user@example.com")
	require.NoError(t, err)

	s.now = time.Now

	_, err = s.VerifyRefresh(refresh)
	assert.ErrorIs(t, err, ErrExpired)
	_, err = s.VerifyAccess(access)
	assert.ErrorIs(t, err, ErrExpired)
	_, err = s.Verify(refresh, "refresh-secret")
	assert.ErrorIs(t, err, ErrExpired)

	// decoding still works: expiry is needed to size the blacklist entry
	payload, err := s.DecodeRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, "device-1", payload.DeviceID)
}

func TestSigner_Malformed(t *testing.T) {
	s := newTestSigner(t)

	_, err := s.VerifyRefresh("not.a.jwt")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = s.DecodeRefresh("garbage")
	assert.ErrorIs(t, err, ErrMalformed)
}

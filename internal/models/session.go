package models

import "time"

// Device is an active session bound to the deviceId claim of a refresh token.
type Device struct {
	DeviceID       string    `db:"device_id" json:"deviceId"`
	UserID         string    `db:"user_id" json:"-"`
	IP             string    `db:"ip" json:"ip"`
	Title          string    `db:"title" json:"title"`
	LastActiveDate time.Time `db:"last_active_date" json:"lastActiveDate"`
}

// BlacklistEntry is a revoked refresh token. It stays revoked until ExpirationDate,
// after which the token signature is expired anyway and the row may be purged.
type BlacklistEntry struct {
	RefreshToken   string    `db:"refresh_token"`
	ExpirationDate time.Time `db:"expiration_date"`
}

// RefreshPayload is the decoded content of a refresh token.
type RefreshPayload struct {
	UserID    string
	DeviceID  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AccessPayload is the decoded content of an access token.
type AccessPayload struct {
	UserID    string
	Email     string
	DeviceID  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is what a successful login or refresh hands to the transport layer.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

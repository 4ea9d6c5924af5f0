package models

import (
	"database/sql"
	"time"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleSuperAdmin Role = "sa"
)

// User mirrors a row of the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Login        string    `db:"login" json:"login"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	BanInfo
	EmailConfirmation
	PasswordRecovery
	RegistrationData
}

type BanInfo struct {
	IsBanned  bool           `db:"is_banned" json:"isBanned"`
	BanDate   sql.NullTime   `db:"ban_date" json:"-"`
	BanReason sql.NullString `db:"ban_reason" json:"-"`
}

type EmailConfirmation struct {
	ConfirmationCode string       `db:"confirmation_code" json:"-"`
	ExpirationDate   time.Time    `db:"expiration_date" json:"-"`
	IsConfirmed      bool         `db:"is_confirmed" json:"-"`
	IsConfirmedDate  sql.NullTime `db:"is_confirmed_date" json:"-"`
}

// PasswordRecovery is kept apart from EmailConfirmation so a recovery never touches the
// registration code or its expiration.
type PasswordRecovery struct {
	RecoveryCode           sql.NullString `db:"recovery_code" json:"-"`
	RecoveryExpirationDate sql.NullTime   `db:"recovery_expiration_date" json:"-"`
}

type RegistrationData struct {
	IP        string `db:"ip" json:"-"`
	UserAgent string `db:"user_agent" json:"-"`
}

func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// CurrentUser is the identity an authentication guard resolves for a request.
type CurrentUser struct {
	ID       string
	Login    string
	Email    string
	Role     Role
	IsBanned bool
}

func (u *User) Current() CurrentUser {
	return CurrentUser{
		ID:       u.ID,
		Login:    u.Login,
		Email:    u.Email,
		Role:     u.Role,
		IsBanned: u.IsBanned,
	}
}

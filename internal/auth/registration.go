package auth

import (
	"context"
	"strings"

	"github.com/AtoyanMikhail/blogauth/internal/apperrors"
	"github.com/AtoyanMikhail/blogauth/internal/logger"
	"github.com/AtoyanMikhail/blogauth/internal/models"
)

const errCodeIncorrect = "confirmation code is incorrect, expired or already been applied"

type Registration struct {
	Login    string
	Email    string
	Password string
	Client   Client
}

// Register stores login and email lowercased; every lookup compares against lowercase.
func (s *Service) Register(ctx context.Context, r Registration) error {
	login, email := strings.ToLower(r.Login), strings.ToLower(r.Email)

	loginTaken, emailTaken, err := s.users.FindTaken(ctx, login, email)
	if err != nil {
		return err
	}
	if loginTaken {
		return apperrors.Conflict("login", login)
	}
	if emailTaken {
		return apperrors.Conflict("email", email)
	}

	hash, err := s.hasher.Hash(r.Password)
	if err != nil {
		return apperrors.Internal(err)
	}

	now := s.now()
	user := &models.User{
		Login:        login,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		CreatedAt:    now,
		EmailConfirmation: models.EmailConfirmation{
			ConfirmationCode: s.newCode(),
			ExpirationDate:   now.Add(s.codeTTL),
		},
		RegistrationData: models.RegistrationData{
			IP:        r.Client.IP,
			UserAgent: r.Client.UserAgent,
		},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}

	if err := s.mailer.Enqueue(ctx, user.Email, user.ConfirmationCode, models.MailConfirmation, user.ExpirationDate); err != nil {
		return err
	}

	s.l.Info("User registered", logger.String("user_id", user.ID))
	return nil
}

// ConfirmRegistration accepts a code that is unexpired and not yet applied.
func (s *Service) ConfirmRegistration(ctx context.Context, code string) error {
	now := s.now()

	user, err := s.users.FindByConfirmationCode(ctx, code, now)
	if err != nil {
		return err
	}
	if user == nil || user.IsConfirmed {
		return apperrors.Validation("code", errCodeIncorrect)
	}

	ok, err := s.users.ConfirmByCode(ctx, code, now)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Validation("code", errCodeIncorrect)
	}

	s.l.Info("User confirmed", logger.String("user_id", user.ID))
	return nil
}

// ResendConfirmation replaces the code of an unconfirmed user and mails the new one.
func (s *Service) ResendConfirmation(ctx context.Context, email string) error {
	user, err := s.users.FindByLoginOrEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || user.IsConfirmed {
		return apperrors.Validation("email", "user with this email does not exist or is already confirmed")
	}

	code := s.newCode()
	expiresAt := s.now().Add(s.codeTTL)
	if _, err := s.users.UpdateConfirmationCodeByEmail(ctx, email, code, expiresAt); err != nil {
		return err
	}
	return s.mailer.Enqueue(ctx, user.Email, code, models.MailConfirmation, expiresAt)
}

// PasswordRecovery mails a recovery code. An unknown email is accepted silently so the
// endpoint cannot be used to enumerate accounts.
func (s *Service) PasswordRecovery(ctx context.Context, email string) error {
	code := s.newCode()
	expiresAt := s.now().Add(s.codeTTL)

	user, err := s.users.SetRecoveryCodeByEmail(ctx, email, code, expiresAt)
	if err != nil {
		return err
	}
	if user == nil {
		s.l.Debug("Password recovery for unknown email")
		return nil
	}
	return s.mailer.Enqueue(ctx, user.Email, code, models.MailRecovery, expiresAt)
}

// NewPassword sets the password of the user holding recoveryCode and consumes the code.
func (s *Service) NewPassword(ctx context.Context, recoveryCode, newPassword string) error {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperrors.Internal(err)
	}

	updated, err := s.users.UpdatePasswordHashByRecoveryCode(ctx, recoveryCode, hash, s.now())
	if err != nil {
		return err
	}
	if updated == 0 {
		return apperrors.Validation("recoveryCode", "recovery code is incorrect or expired")
	}
	return nil
}

package mail

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AtoyanMikhail/blogauth/internal/logger"
	"github.com/AtoyanMikhail/blogauth/internal/models"
	"github.com/AtoyanMikhail/blogauth/internal/repository"
)

// Outbox persists codes for delivery and later hands them to a Sender.
type Outbox struct {
	repo     repository.MailRepository
	sender   Sender
	linkBase string
	l        logger.Logger
	now      func() time.Time
}

// NewOutbox builds mail links from linkBase, the public URL of the service.
func NewOutbox(repo repository.MailRepository, sender Sender, linkBase string, l logger.Logger) *Outbox {
	return &Outbox{
		repo:     repo,
		sender:   sender,
		linkBase: strings.TrimRight(linkBase, "/"),
		l:        l,
		now:      time.Now,
	}
}

func (o *Outbox) Enqueue(ctx context.Context, email, code string, kind models.MailKind, expiresAt time.Time) error {
	mc := &models.MailCode{
		CodeID:         uuid.NewString(),
		Email:          email,
		Code:           code,
		Kind:           kind,
		ExpirationDate: expiresAt,
		CreatedAt:      o.now(),
		Status:         models.MailPending,
	}
	if err := o.repo.Insert(ctx, mc); err != nil {
		return err
	}

	o.l.Debug("Mail code enqueued", logger.String("code_id", mc.CodeID), logger.String("kind", string(kind)))
	return nil
}

// DispatchPending sends up to limit pending codes. A failed delivery marks that code failed
// and does not stop the batch.
func (o *Outbox) DispatchPending(ctx context.Context, limit int) (int, error) {
	codes, err := o.repo.ListPending(ctx, limit)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, mc := range codes {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		status := models.MailSent
		subject, body := o.render(mc)
		if err := o.sender.Send(ctx, mc.Email, subject, body); err != nil {
			o.l.Error("Failed to send mail",
				logger.String("code_id", mc.CodeID),
				logger.Error(err))
			status = models.MailFailed
		} else {
			sent++
		}

		if err := o.repo.SetStatus(ctx, mc.CodeID, status); err != nil {
			return sent, err
		}
	}
	return sent, nil
}

func (o *Outbox) render(mc *models.MailCode) (string, string) {
	code := url.QueryEscape(mc.Code)
	switch mc.Kind {
	case models.MailRecovery:
		return "Password recovery", fmt.Sprintf(
			`<h1>Password recovery</h1><p>To finish password recovery please follow the link below:
<a href="%s/password-recovery?recoveryCode=%s">recovery password</a></p>`, o.linkBase, code)
	default:
		return "Registration confirmation", fmt.Sprintf(
			`<h1>Thank for your registration</h1><p>To finish registration please follow the link below:
<a href="%s/auth/confirm-registration?code=%s">complete registration</a></p>`, o.linkBase, code)
	}
}

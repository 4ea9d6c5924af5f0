package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/AtoyanMikhail/blogauth/internal/config"
	"github.com/AtoyanMikhail/blogauth/internal/logger"
)

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type smtpSender struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPSender uses PLAIN auth when a username is configured.
func NewSMTPSender(cfg config.MailConfig) Sender {
	s := &smtpSender{
		addr: net.JoinHostPort(cfg.Host, cfg.Port),
		from: cfg.From,
	}
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s
}

func (s *smtpSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

type logSender struct {
	l logger.Logger
}

// NewLogSender only logs messages. It stands in for SMTP when no mail host is configured.
func NewLogSender(l logger.Logger) Sender {
	return &logSender{l: l}
}

func (s *logSender) Send(ctx context.Context, to, subject, body string) error {
	s.l.Info("Mail not sent, no SMTP host configured",
		logger.String("to", to),
		logger.String("subject", subject))
	return nil
}

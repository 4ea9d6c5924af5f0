package blacklist

import (
	"context"
	"time"

	"github.com/AtoyanMikhail/blogauth/internal/logger"
	"github.com/AtoyanMikhail/blogauth/internal/models"
	"github.com/AtoyanMikhail/blogauth/internal/repository"
)

// Blacklist records refresh tokens that must never be honored again.
type Blacklist interface {
	// Add is idempotent. It reports whether this call was the one that revoked the token.
	Add(ctx context.Context, refreshToken string, expirationDate time.Time) (bool, error)
	IsBlacklisted(ctx context.Context, refreshToken string) (bool, error)
	// Purge drops entries whose token has expired on its own.
	Purge(ctx context.Context, now time.Time) (int64, error)
}

type service struct {
	repo repository.BlacklistRepository
	l    logger.Logger
}

func New(repo repository.BlacklistRepository, l logger.Logger) Blacklist {
	return &service{repo: repo, l: l}
}

func (s *service) Add(ctx context.Context, refreshToken string, expirationDate time.Time) (bool, error) {
	inserted, err := s.repo.Insert(ctx, &models.BlacklistEntry{
		RefreshToken:   refreshToken,
		ExpirationDate: expirationDate,
	})
	if err != nil {
		return false, err
	}

	if !inserted {
		s.l.Debug("Refresh token already blacklisted", logger.Time("expiration_date", expirationDate))
	}
	return inserted, nil
}

func (s *service) IsBlacklisted(ctx context.Context, refreshToken string) (bool, error) {
	return s.repo.Exists(ctx, refreshToken)
}

func (s *service) Purge(ctx context.Context, now time.Time) (int64, error) {
	removed, err := s.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.l.Info("Purged expired blacklist entries", logger.Int64("removed", removed))
	}
	return removed, nil
}

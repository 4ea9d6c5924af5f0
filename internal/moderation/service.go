package moderation

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AtoyanMikhail/blogauth/internal/ability"
	"github.com/AtoyanMikhail/blogauth/internal/apperrors"
	"github.com/AtoyanMikhail/blogauth/internal/devices"
	"github.com/AtoyanMikhail/blogauth/internal/hasher"
	"github.com/AtoyanMikhail/blogauth/internal/logger"
	"github.com/AtoyanMikhail/blogauth/internal/models"
	"github.com/AtoyanMikhail/blogauth/internal/repository"
)

type Service struct {
	users   repository.UserRepository
	blogs   repository.BlogRepository
	posts   repository.PostRepository
	devices devices.Registry
	hasher  hasher.Hasher
	l       logger.Logger
	now     func() time.Time
}

func NewService(
	users repository.UserRepository,
	blogs repository.BlogRepository,
	posts repository.PostRepository,
	devices devices.Registry,
	hasher hasher.Hasher,
	l logger.Logger,
) *Service {
	return &Service{
		users:   users,
		blogs:   blogs,
		posts:   posts,
		devices: devices,
		hasher:  hasher,
		l:       l,
		now:     time.Now,
	}
}

func (s *Service) targetUser(ctx context.Context, current models.CurrentUser, id string) (*models.User, error) {
	target, err := s.users.SaFindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apperrors.NotFound("user", id)
	}

	err = ability.ForUser(current).Authorize(ability.Manage, ability.Resource{
		Kind:    ability.KindUser,
		OwnerID: target.ID,
	})
	if err != nil {
		return nil, ability.Classify(err)
	}
	return target, nil
}

// BanUnbanUser sets the ban state of a user. Banning also ends every device session of the
// user, so outstanding refresh tokens stop working at the next rotation.
func (s *Service) BanUnbanUser(ctx context.Context, current models.CurrentUser, userID string, isBanned bool, reason string) error {
	target, err := s.targetUser(ctx, current, userID)
	if err != nil {
		return err
	}

	info := models.BanInfo{IsBanned: isBanned}
	if isBanned {
		info.BanDate = sql.NullTime{Time: s.now(), Valid: true}
		info.BanReason = sql.NullString{String: reason, Valid: true}
	}

	if _, err := s.users.BanUnban(ctx, target.ID, info); err != nil {
		return err
	}

	if isBanned {
		removed, err := s.devices.RemoveAllByUser(ctx, target.ID)
		if err != nil {
			return err
		}
		s.l.Info("User banned",
			logger.String("user_id", target.ID),
			logger.String("by", current.ID),
			logger.Int64("sessions_removed", removed))
		return nil
	}

	s.l.Info("User unbanned", logger.String("user_id", target.ID), logger.String("by", current.ID))
	return nil
}

func (s *Service) RemoveUser(ctx context.Context, current models.CurrentUser, userID string) error {
	target, err := s.targetUser(ctx, current, userID)
	if err != nil {
		return err
	}

	deleted, err := s.users.Delete(ctx, target.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NotFound("user", userID)
	}

	s.l.Info("User removed", logger.String("user_id", target.ID), logger.String("by", current.ID))
	return nil
}

func (s *Service) ChangeRole(ctx context.Context, current models.CurrentUser, userID string, role models.Role) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleSuperAdmin {
		return nil, apperrors.Validation("role", "unknown role")
	}

	target, err := s.targetUser(ctx, current, userID)
	if err != nil {
		return nil, err
	}

	updated, err := s.users.ChangeRole(ctx, target.ID, role)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.NotFound("user", userID)
	}

	s.l.Info("User role changed", logger.String("user_id", target.ID), logger.String("role", string(role)))
	return updated, nil
}

// BanUnbanBlog sets the ban state of a blog and its posts.
func (s *Service) BanUnbanBlog(ctx context.Context, current models.CurrentUser, blogID string, isBanned bool) error {
	blog, err := s.blogs.FindByID(ctx, blogID)
	if err != nil {
		return err
	}
	if blog == nil {
		return apperrors.NotFound("blog", blogID)
	}

	err = ability.ForUser(current).Authorize(ability.Manage, ability.Resource{
		Kind:    ability.KindBlog,
		OwnerID: blog.OwnerID,
	})
	if err != nil {
		return ability.Classify(err)
	}

	var banDate *time.Time
	if isBanned {
		now := s.now()
		banDate = &now
	}

	ok, err := s.blogs.SetBan(ctx, blog.ID, isBanned, banDate)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("blog", blogID)
	}
	return nil
}

// DeletePost checks the caller's own identity rather than the post's owner.
func (s *Service) DeletePost(ctx context.Context, current models.CurrentUser, postID string) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return apperrors.NotFound("post", postID)
	}

	err = ability.ForUserID(current.ID).Authorize(ability.Delete, ability.Resource{
		Kind:    ability.KindPost,
		OwnerID: current.ID,
	})
	if err != nil {
		return ability.Classify(err)
	}

	deleted, err := s.posts.Delete(ctx, post.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NotFound("post", postID)
	}
	return nil
}

// EnsureSuperAdmin creates a confirmed super admin, or promotes the existing account with
// the same login.
func (s *Service) EnsureSuperAdmin(ctx context.Context, login, email, password string) error {
	login, email = strings.ToLower(login), strings.ToLower(email)

	existing, err := s.users.FindByLoginOrEmail(ctx, login)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.IsSuperAdmin() {
			return nil
		}
		_, err := s.users.ChangeRole(ctx, existing.ID, models.RoleSuperAdmin)
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return apperrors.Internal(err)
	}

	now := s.now()
	sa := &models.User{
		Login:        login,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
		CreatedAt:    now,
		EmailConfirmation: models.EmailConfirmation{
			ConfirmationCode: uuid.NewString(),
			ExpirationDate:   now,
			IsConfirmed:      true,
			IsConfirmedDate:  sql.NullTime{Time: now, Valid: true},
		},
	}
	if err := s.users.Create(ctx, sa); err != nil {
		return err
	}

	s.l.Info("Super admin created", logger.String("user_id", sa.ID))
	return nil
}

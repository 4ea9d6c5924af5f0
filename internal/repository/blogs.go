package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AtoyanMikhail/blogauth/internal/apperrors"
	"github.com/AtoyanMikhail/blogauth/internal/logger"
	"github.com/AtoyanMikhail/blogauth/internal/models"
)

type blogRepo struct {
	db *sqlx.DB
	l  logger.Logger
}

func NewBlogRepository(db *sqlx.DB, l logger.Logger) BlogRepository {
	return &blogRepo{db: db, l: l}
}

func (r *blogRepo) FindByID(ctx context.Context, id string) (*models.Blog, error) {
	query := `
		SELECT id, owner_id, name, description, website_url, is_membership, is_banned, ban_date, created_at
		FROM blogs
		WHERE id = $1`

	blog := &models.Blog{}
	if err := r.db.GetContext(ctx, blog, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get blog: %w", err))
	}
	return blog, nil
}

// SetBan also hides the blog's posts from public listings through the posts.is_banned flag.
func (r *blogRepo) SetBan(ctx context.Context, id string, isBanned bool, banDate *time.Time) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, apperrors.Internal(fmt.Errorf("failed to begin tx: %w", err))
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE blogs SET is_banned = $2, ban_date = $3 WHERE id = $1`, id, isBanned, banDate)
	if err != nil {
		r.l.Error("Failed to ban blog", logger.String("blog_id", id), logger.Error(err))
		return false, apperrors.Internal(fmt.Errorf("failed to ban blog: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Internal(fmt.Errorf("failed to get rows affected: %w", err))
	}
	if affected == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `UPDATE posts SET is_banned = $2 WHERE blog_id = $1`, id, isBanned); err != nil {
		return false, apperrors.Internal(fmt.Errorf("failed to ban blog posts: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return false, apperrors.Internal(fmt.Errorf("failed to commit blog ban: %w", err))
	}
	return true, nil
}

type postRepo struct {
	db *sqlx.DB
	l  logger.Logger
}

func NewPostRepository(db *sqlx.DB, l logger.Logger) PostRepository {
	return &postRepo{db: db, l: l}
}

func (r *postRepo) FindByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT id, blog_id, owner_id, title, created_at FROM posts WHERE id = $1`

	post := &models.Post{}
	if err := r.db.GetContext(ctx, post, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get post: %w", err))
	}
	return post, nil
}

func (r *postRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		r.l.Error("Failed to delete post", logger.String("post_id", id), logger.Error(err))
		return false, apperrors.Internal(fmt.Errorf("failed to delete post: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Internal(fmt.Errorf("failed to get rows affected: %w", err))
	}
	return affected == 1, nil
}

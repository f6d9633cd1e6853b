package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/internal/util"
)

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository with the given GORM DB instance.
func NewCommentRepository(db *gorm.DB) domain.CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a comment and reloads it with its author.
func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("User", "Post").Create(comment).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return r.missingReference(ctx, comment.PostID)
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}
	if err := db.Preload("User").First(comment, comment.ID).Error; err != nil {
		return fmt.Errorf("failed to reload comment: %w", err)
	}
	return nil
}

// missingReference tells a vanished post apart from a vanished author.
func (r *commentRepository) missingReference(ctx context.Context, postID uint) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Post{}).Where("id = ?", postID).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check post: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("post %w", domain.ErrNotFound)
	}
	return errAccountGone
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*domain.Comment, error) {
	var comment domain.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("comment %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &comment, nil
}

// ListByPost returns one page of a post's comments, newest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint, page, limit int) ([]*domain.Comment, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Comment{}).Where("post_id = ?", postID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}
	var comments []*domain.Comment
	err := query.Preload("User").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(util.Offset(page, limit)).
		Find(&comments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, total, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Comment{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete comment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("comment %w", domain.ErrNotFound)
	}
	return nil
}

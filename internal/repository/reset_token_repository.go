package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/internal/util"
)

type resetTokenRepository struct {
	db *gorm.DB
}

// NewResetTokenRepository creates the password reset token store.
func NewResetTokenRepository(db *gorm.DB) domain.ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

func (r *resetTokenRepository) Create(ctx context.Context, token string, userID uint, expiresAt time.Time) error {
	record := &domain.ResetToken{
		TokenHash: util.HashToken(token),
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

func (r *resetTokenRepository) GetByToken(ctx context.Context, token string) (*domain.ResetToken, error) {
	var record domain.ResetToken
	if err := r.db.WithContext(ctx).Where("token_hash = ?", util.HashToken(token)).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("reset token %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	return &record, nil
}

func (r *resetTokenRepository) Delete(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token_hash = ?", util.HashToken(token)).Delete(&domain.ResetToken{}).Error; err != nil {
		return fmt.Errorf("failed to delete reset token: %w", err)
	}
	return nil
}

func (r *resetTokenRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.ResetToken{}).Error; err != nil {
		return fmt.Errorf("failed to delete reset tokens: %w", err)
	}
	return nil
}

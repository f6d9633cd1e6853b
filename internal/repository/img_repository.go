package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"seungpyo.lee/BlogBoard/internal/domain"
)

// imgRepository records stored images by content hash.
type imgRepository struct {
	db *gorm.DB
}

func NewImgRepository(db *gorm.DB) domain.ImgRepository {
	return &imgRepository{db: db}
}

func (r *imgRepository) GetByHash(ctx context.Context, hash string) (*domain.Image, error) {
	var img domain.Image
	if err := r.db.WithContext(ctx).Where("hash = ?", hash).First(&img).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("image %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return &img, nil
}

func (r *imgRepository) Create(ctx context.Context, img *domain.Image) error {
	if err := r.db.WithContext(ctx).Create(img).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("image %w", domain.ErrConflict)
		}
		return fmt.Errorf("failed to create image: %w", err)
	}
	return nil
}

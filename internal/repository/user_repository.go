package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"seungpyo.lee/BlogBoard/internal/domain"
)

// userRepository implements domain.UserRepository using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository with the given GORM DB instance.
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	user.Email = normalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user %w", domain.ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, userLookupError(err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email, ignoring case.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return nil, userLookupError(err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, userLookupError(err)
	}
	return &user, nil
}

// Update saves every column of an existing user.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	user.Email = normalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user %w", domain.ErrConflict)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete removes a user and the rows that belong to it in one transaction.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownPosts := tx.Model(&domain.Post{}).Select("id").Where("user_id = ?", id)
		steps := []struct {
			what string
			run  func() error
		}{
			{"reactions on posts", func() error {
				return tx.Where("post_id IN (?)", ownPosts).Delete(&domain.PostReaction{}).Error
			}},
			{"comments on posts", func() error {
				return tx.Where("post_id IN (?)", ownPosts).Delete(&domain.Comment{}).Error
			}},
			{"reactions", func() error { return tx.Where("user_id = ?", id).Delete(&domain.PostReaction{}).Error }},
			{"comments", func() error { return tx.Where("user_id = ?", id).Delete(&domain.Comment{}).Error }},
			{"posts", func() error { return tx.Where("user_id = ?", id).Delete(&domain.Post{}).Error }},
			{"refresh tokens", func() error { return tx.Where("user_id = ?", id).Delete(&domain.RefreshToken{}).Error }},
			{"reset tokens", func() error { return tx.Where("user_id = ?", id).Delete(&domain.ResetToken{}).Error }},
			{"image owners", func() error {
				return tx.Model(&domain.Image{}).Where("user_id = ?", id).Update("user_id", nil).Error
			}},
		}
		for _, step := range steps {
			if err := step.run(); err != nil {
				return fmt.Errorf("failed to delete user %s: %w", step.what, err)
			}
		}
		result := tx.Delete(&domain.User{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("user %w", domain.ErrNotFound)
		}
		return nil
	})
}

func userLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("user %w", domain.ErrNotFound)
	}
	return fmt.Errorf("failed to get user: %w", err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

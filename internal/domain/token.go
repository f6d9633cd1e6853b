package domain

import (
	"context"
	"time"
)

// RefreshToken is the persisted record of an issued refresh token.
// Only the SHA-256 hash of the token string is stored.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null"`
	UserID    uint      `gorm:"index;not null"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// ResetToken is a single-use password reset credential.
type ResetToken struct {
	ID        uint      `gorm:"primaryKey"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null"`
	UserID    uint      `gorm:"index;not null"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

func (t *ResetToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// TokenRepository is the refresh-token store. Implementations take the raw
// token string and hash it themselves.
type TokenRepository interface {
	Create(ctx context.Context, token string, userID uint, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type ResetTokenRepository interface {
	Create(ctx context.Context, token string, userID uint, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*ResetToken, error)
	Delete(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID uint) error
}

// ResetNotifier delivers a password reset token to its owner.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, user *User, token string) error
}

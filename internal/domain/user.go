package domain

import (
	"context"
	"time"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:30;uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"` // stored lower-cased
	Password     string    `json:"-" gorm:"not null"`                          // bcrypt hash
	ProfileImage *string   `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Username     *string `json:"username,omitempty" binding:"omitempty,min=3,max=30"`
	ProfileImage *string `json:"profileImage,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=72"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=72"`
}

// AuthResult is returned by register, login and refresh.
type AuthResult struct {
	User         *User
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, user *User) error
	// Delete removes the user and everything it owns: posts, comments,
	// reactions, reset tokens and SQL-stored refresh tokens.
	Delete(ctx context.Context, id uint) error
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUserByID(ctx context.Context, id uint) (*User, error)
	UpdateProfile(ctx context.Context, userID uint, req UpdateProfileRequest) (*User, error)
	RemoveProfileImage(ctx context.Context, userID uint) (*User, error)
	ChangePassword(ctx context.Context, userID uint, req ChangePasswordRequest) error
	DeleteAccount(ctx context.Context, userID uint) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

package domain

import (
	"context"
	"time"
)

type Comment struct {
	ID        uint      `gorm:"primaryKey"`
	Content   string    `gorm:"size:1000;not null"`
	UserID    uint      `gorm:"index;not null"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PostID    uint      `gorm:"index;not null"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type CommentPage struct {
	Comments []*Comment
	Total    int64
	Page     int
	Limit    int
}

type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id uint) (*Comment, error)
	ListByPost(ctx context.Context, postID uint, page, limit int) ([]*Comment, int64, error)
	Delete(ctx context.Context, id uint) error
}

type CommentService interface {
	CreateComment(ctx context.Context, postID, userID uint, req CreateCommentRequest) (*Comment, error)
	ListComments(ctx context.Context, postID uint, page, limit int) (*CommentPage, error)
	DeleteComment(ctx context.Context, id, userID uint) error
}

package domain

import (
	"context"
	"time"
)

const (
	MaxTitleLength   = 100
	MaxContentLength = 1000
	MaxCommentLength = 1000
)

type Post struct {
	ID        uint      `gorm:"primaryKey"`
	Title     string    `gorm:"size:100;not null"`
	Content   string    `gorm:"size:1000;not null"`
	ImageURL  *string   `gorm:"size:512"`
	UserID    uint      `gorm:"index;not null"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	// Filled at read time.
	Likes         []uint `gorm:"-"`
	Dislikes      []uint `gorm:"-"`
	CommentsCount int64  `gorm:"-"`
}

type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// PostReaction is a user's like or dislike on a post. The unique
// (post_id, user_id) pair makes liking and disliking mutually exclusive.
type PostReaction struct {
	ID        uint         `gorm:"primaryKey"`
	PostID    uint         `gorm:"not null;uniqueIndex:idx_reaction_post_user"`
	UserID    uint         `gorm:"not null;uniqueIndex:idx_reaction_post_user;index"`
	Kind      ReactionKind `gorm:"size:10;not null"`
	Post      Post         `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	User      User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

type CreatePostRequest struct {
	Title    string  `json:"title" binding:"required"`
	Content  string  `json:"content" binding:"required"`
	ImageURL *string `json:"imageUrl,omitempty"`
}

type UpdatePostRequest struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	ImageURL *string `json:"imageUrl,omitempty"`
}

type PostFilter struct {
	Page     int
	Limit    int
	Search   string
	Popular  bool
	AuthorID *uint
}

type PostPage struct {
	Posts []*Post
	Total int64
	Page  int
	Limit int
}

// ReactionState is the like/dislike sets of a post after a toggle.
type ReactionState struct {
	Likes    []uint
	Dislikes []uint
}

type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id uint) (*Post, error)
	// List returns one page of posts plus the total number of matches.
	// minLikes applies only when filter.Popular is set.
	List(ctx context.Context, filter PostFilter, minLikes int) ([]*Post, int64, error)
	Update(ctx context.Context, post *Post) error
	// Delete removes the post with its comments and reactions.
	Delete(ctx context.Context, id uint) error
	ToggleReaction(ctx context.Context, postID, userID uint, kind ReactionKind) (*ReactionState, error)
}

type PostService interface {
	CreatePost(ctx context.Context, userID uint, req CreatePostRequest) (*Post, error)
	GetPost(ctx context.Context, id uint) (*Post, error)
	ListPosts(ctx context.Context, filter PostFilter) (*PostPage, error)
	UpdatePost(ctx context.Context, id, userID uint, req UpdatePostRequest) (*Post, error)
	DeletePost(ctx context.Context, id, userID uint) error
	LikePost(ctx context.Context, id, userID uint) (*ReactionState, error)
	DislikePost(ctx context.Context, id, userID uint) (*ReactionState, error)
}

package model

import (
	"time"

	"seungpyo.lee/BlogBoard/internal/domain"
)

// User is the account as returned to its owner.
type User struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	ProfileImage *string   `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Author is the public part of a user embedded in posts and comments.
type Author struct {
	ID           uint    `json:"id"`
	Username     string  `json:"username"`
	ProfileImage *string `json:"profileImage"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User         User      `json:"user"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// TokenResponse is returned by refresh-token.
type TokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type Post struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	ImageURL      *string   `json:"imageUrl"`
	User          Author    `json:"user"`
	Likes         []uint    `json:"likes"`
	Dislikes      []uint    `json:"dislikes"`
	LikesCount    int       `json:"likesCount"`
	DislikesCount int       `json:"dislikesCount"`
	CommentsCount int64     `json:"commentsCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type PostList struct {
	Posts []Post `json:"posts"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

type Reactions struct {
	Likes    []uint `json:"likes"`
	Dislikes []uint `json:"dislikes"`
}

type Comment struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	PostID    uint      `json:"postId"`
	User      Author    `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CommentList struct {
	Comments []Comment `json:"comments"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

type UploadResponse struct {
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
}

func NewUser(u *domain.User) User {
	return User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func NewAuthor(u *domain.User) Author {
	return Author{ID: u.ID, Username: u.Username, ProfileImage: u.ProfileImage}
}

func NewAuthResponse(res *domain.AuthResult) AuthResponse {
	return AuthResponse{
		User:         NewUser(res.User),
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.ExpiresAt,
	}
}

func NewPost(p *domain.Post) Post {
	likes, dislikes := nonNil(p.Likes), nonNil(p.Dislikes)
	return Post{
		ID:            p.ID,
		Title:         p.Title,
		Content:       p.Content,
		ImageURL:      p.ImageURL,
		User:          NewAuthor(&p.User),
		Likes:         likes,
		Dislikes:      dislikes,
		LikesCount:    len(likes),
		DislikesCount: len(dislikes),
		CommentsCount: p.CommentsCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func NewPostList(page *domain.PostPage) PostList {
	posts := make([]Post, 0, len(page.Posts))
	for _, p := range page.Posts {
		posts = append(posts, NewPost(p))
	}
	return PostList{Posts: posts, Total: page.Total, Page: page.Page, Limit: page.Limit}
}

func NewReactions(state *domain.ReactionState) Reactions {
	return Reactions{Likes: nonNil(state.Likes), Dislikes: nonNil(state.Dislikes)}
}

func NewComment(c *domain.Comment) Comment {
	return Comment{
		ID:        c.ID,
		Content:   c.Content,
		PostID:    c.PostID,
		User:      NewAuthor(&c.User),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func NewCommentList(page *domain.CommentPage) CommentList {
	comments := make([]Comment, 0, len(page.Comments))
	for _, c := range page.Comments {
		comments = append(comments, NewComment(c))
	}
	return CommentList{Comments: comments, Total: page.Total, Page: page.Page, Limit: page.Limit}
}

func nonNil(ids []uint) []uint {
	if ids == nil {
		return []uint{}
	}
	return ids
}

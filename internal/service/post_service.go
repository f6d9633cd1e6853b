package service

import (
	"context"
	"fmt"

	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/internal/util"
)

type postService struct {
	postRepo         domain.PostRepository
	popularThreshold int
}

// NewPostService creates a new PostService. Posts with at least
// popularThreshold likes match the popular filter.
func NewPostService(postRepo domain.PostRepository, popularThreshold int) domain.PostService {
	return &postService{postRepo: postRepo, popularThreshold: popularThreshold}
}

// CreatePost stores a new post authored by userID.
func (s *postService) CreatePost(ctx context.Context, userID uint, req domain.CreatePostRequest) (*domain.Post, error) {
	title, err := cleanTitle(req.Title)
	if err != nil {
		return nil, err
	}
	content, err := cleanContent(req.Content)
	if err != nil {
		return nil, err
	}
	post := &domain.Post{
		Title:   title,
		Content: content,
		UserID:  userID,
	}
	if req.ImageURL != nil {
		if post.ImageURL, err = normalizeImageURL(*req.ImageURL); err != nil {
			return nil, err
		}
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost retrieves a post by its ID.
func (s *postService) GetPost(ctx context.Context, id uint) (*domain.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// ListPosts returns one page of posts matching the filter.
func (s *postService) ListPosts(ctx context.Context, filter domain.PostFilter) (*domain.PostPage, error) {
	if filter.Page < 1 {
		filter.Page = util.DefaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = util.DefaultLimit
	}
	if filter.Limit > util.MaxLimit {
		filter.Limit = util.MaxLimit
	}
	posts, total, err := s.postRepo.List(ctx, filter, s.popularThreshold)
	if err != nil {
		return nil, err
	}
	return &domain.PostPage{Posts: posts, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// UpdatePost updates an existing post if the author matches.
func (s *postService) UpdatePost(ctx context.Context, id, userID uint, req domain.UpdatePostRequest) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, fmt.Errorf("%w: only the author can update this post", domain.ErrForbidden)
	}
	if req.Title != nil {
		if post.Title, err = cleanTitle(*req.Title); err != nil {
			return nil, err
		}
	}
	if req.Content != nil {
		if post.Content, err = cleanContent(*req.Content); err != nil {
			return nil, err
		}
	}
	if req.ImageURL != nil {
		if post.ImageURL, err = normalizeImageURL(*req.ImageURL); err != nil {
			return nil, err
		}
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, id)
}

// DeletePost removes a post if the author matches.
func (s *postService) DeletePost(ctx context.Context, id, userID uint) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return fmt.Errorf("%w: only the author can delete this post", domain.ErrForbidden)
	}
	return s.postRepo.Delete(ctx, id)
}

func (s *postService) LikePost(ctx context.Context, id, userID uint) (*domain.ReactionState, error) {
	return s.postRepo.ToggleReaction(ctx, id, userID, domain.ReactionLike)
}

func (s *postService) DislikePost(ctx context.Context, id, userID uint) (*domain.ReactionState, error) {
	return s.postRepo.ToggleReaction(ctx, id, userID, domain.ReactionDislike)
}

func cleanTitle(raw string) (string, error) {
	title := util.SanitizeText(raw)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if util.TextLength(title) > domain.MaxTitleLength {
		return "", fmt.Errorf("%w: title must be at most %d characters", domain.ErrValidation, domain.MaxTitleLength)
	}
	return title, nil
}

func cleanContent(raw string) (string, error) {
	content := util.SanitizeText(raw)
	if content == "" {
		return "", fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	if util.TextLength(content) > domain.MaxContentLength {
		return "", fmt.Errorf("%w: content must be at most %d characters", domain.ErrValidation, domain.MaxContentLength)
	}
	return content, nil
}

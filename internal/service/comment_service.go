package service

import (
	"context"
	"fmt"

	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/internal/util"
)

type commentService struct {
	commentRepo domain.CommentRepository
	postRepo    domain.PostRepository
}

func NewCommentService(commentRepo domain.CommentRepository, postRepo domain.PostRepository) domain.CommentService {
	return &commentService{commentRepo: commentRepo, postRepo: postRepo}
}

// CreateComment adds a comment by userID to an existing post.
func (s *commentService) CreateComment(ctx context.Context, postID, userID uint, req domain.CreateCommentRequest) (*domain.Comment, error) {
	content := util.SanitizeText(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	if util.TextLength(content) > domain.MaxCommentLength {
		return nil, fmt.Errorf("%w: comment must be at most %d characters", domain.ErrValidation, domain.MaxCommentLength)
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	comment := &domain.Comment{Content: content, UserID: userID, PostID: postID}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns one page of a post's comments, newest first.
func (s *commentService) ListComments(ctx context.Context, postID uint, page, limit int) (*domain.CommentPage, error) {
	if page < 1 {
		page = util.DefaultPage
	}
	if limit < 1 {
		limit = util.DefaultLimit
	}
	if limit > util.MaxLimit {
		limit = util.MaxLimit
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, total, err := s.commentRepo.ListByPost(ctx, postID, page, limit)
	if err != nil {
		return nil, err
	}
	return &domain.CommentPage{Comments: comments, Total: total, Page: page, Limit: limit}, nil
}

// DeleteComment removes a comment if userID wrote it.
func (s *commentService) DeleteComment(ctx context.Context, id, userID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return fmt.Errorf("%w: only the author can delete this comment", domain.ErrForbidden)
	}
	return s.commentRepo.Delete(ctx, id)
}

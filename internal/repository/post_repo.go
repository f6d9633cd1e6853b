package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/internal/util"
)

// errAccountGone is returned when a write references a user row that no longer
// exists, e.g. an access token still in flight after account deletion.
var errAccountGone = fmt.Errorf("%w: account no longer exists", domain.ErrUnauthorized)

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository with the given GORM DB instance.
func NewPostRepository(db *gorm.DB) domain.PostRepository {
	return &postRepository{db: db}
}

// Create inserts a new post and reloads it with its author.
func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("User").Create(post).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return errAccountGone
		}
		return fmt.Errorf("failed to create post: %w", err)
	}
	if err := db.Preload("User").First(post, post.ID).Error; err != nil {
		return fmt.Errorf("failed to reload post: %w", err)
	}
	post.Likes, post.Dislikes, post.CommentsCount = []uint{}, []uint{}, 0
	return nil
}

// GetByID retrieves a post by its ID with reactions and comment count.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*domain.Post, error) {
	var post domain.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if err := r.loadStats(ctx, []*domain.Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns the posts matching the filter, newest first.
func (r *postRepository) List(ctx context.Context, filter domain.PostFilter, minLikes int) ([]*domain.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Post{}).Joins("JOIN users ON users.id = posts.user_id")
	if filter.AuthorID != nil {
		query = query.Where("posts.user_id = ?", *filter.AuthorID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(
			`(LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(posts.content) LIKE ? ESCAPE '\' OR LOWER(users.username) LIKE ? ESCAPE '\')`,
			like, like, like,
		)
	}
	if filter.Popular {
		query = query.Where(
			"(SELECT COUNT(*) FROM post_reactions pr WHERE pr.post_id = posts.id AND pr.kind = ?) >= ?",
			domain.ReactionLike, minLikes,
		)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	var posts []*domain.Post
	err := query.Select("posts.*").
		Preload("User").
		Order("posts.created_at DESC, posts.id DESC").
		Limit(filter.Limit).
		Offset(util.Offset(filter.Page, filter.Limit)).
		Find(&posts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	if err := r.loadStats(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Update writes title, content and image of an existing post.
func (r *postRepository) Update(ctx context.Context, post *domain.Post) error {
	post.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).Model(&domain.Post{ID: post.ID}).Updates(map[string]interface{}{
		"title":      post.Title,
		"content":    post.Content,
		"image_url":  post.ImageURL,
		"updated_at": post.UpdatedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("post %w", domain.ErrNotFound)
	}
	return nil
}

// Delete removes a post with its comments and reactions.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&domain.PostReaction{}).Error; err != nil {
			return fmt.Errorf("failed to delete reactions: %w", err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		result := tx.Delete(&domain.Post{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete post: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("post %w", domain.ErrNotFound)
		}
		return nil
	})
}

// ToggleReaction applies a like or dislike by userID on postID:
// no reaction -> set kind; same kind -> remove; other kind -> switch.
func (r *postRepository) ToggleReaction(ctx context.Context, postID, userID uint, kind domain.ReactionKind) (*domain.ReactionState, error) {
	var state *domain.ReactionState
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post domain.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("post %w", domain.ErrNotFound)
			}
			return fmt.Errorf("failed to get post: %w", err)
		}

		var existing domain.PostReaction
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			reaction := &domain.PostReaction{PostID: postID, UserID: userID, Kind: kind}
			if err := tx.Omit("Post", "User").Create(reaction).Error; err != nil {
				if errors.Is(err, gorm.ErrForeignKeyViolated) {
					return errAccountGone
				}
				return fmt.Errorf("failed to add reaction: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to get reaction: %w", err)
		case existing.Kind == kind:
			if err := tx.Delete(&domain.PostReaction{}, existing.ID).Error; err != nil {
				return fmt.Errorf("failed to remove reaction: %w", err)
			}
		default:
			if err := tx.Model(&domain.PostReaction{}).Where("id = ?", existing.ID).Update("kind", kind).Error; err != nil {
				return fmt.Errorf("failed to switch reaction: %w", err)
			}
		}

		var reactions []domain.PostReaction
		if err := tx.Where("post_id = ?", postID).Order("id ASC").Find(&reactions).Error; err != nil {
			return fmt.Errorf("failed to load reactions: %w", err)
		}
		state = &domain.ReactionState{Likes: []uint{}, Dislikes: []uint{}}
		for _, rc := range reactions {
			if rc.Kind == domain.ReactionLike {
				state.Likes = append(state.Likes, rc.UserID)
			} else {
				state.Dislikes = append(state.Dislikes, rc.UserID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// loadStats fills the like/dislike sets and comment counts of posts.
func (r *postRepository) loadStats(ctx context.Context, posts []*domain.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(posts))
	byID := make(map[uint]*domain.Post, len(posts))
	for _, p := range posts {
		p.Likes, p.Dislikes, p.CommentsCount = []uint{}, []uint{}, 0
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	db := r.db.WithContext(ctx)
	var reactions []domain.PostReaction
	if err := db.Where("post_id IN ?", ids).Order("id ASC").Find(&reactions).Error; err != nil {
		return fmt.Errorf("failed to load reactions: %w", err)
	}
	for _, rc := range reactions {
		p := byID[rc.PostID]
		if rc.Kind == domain.ReactionLike {
			p.Likes = append(p.Likes, rc.UserID)
		} else {
			p.Dislikes = append(p.Dislikes, rc.UserID)
		}
	}

	var counts []struct {
		PostID uint
		Count  int64
	}
	if err := db.Model(&domain.Comment{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&counts).Error; err != nil {
		return fmt.Errorf("failed to count comments: %w", err)
	}
	for _, c := range counts {
		byID[c.PostID].CommentsCount = c.Count
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/internal/model"
	"seungpyo.lee/BlogBoard/internal/util"
	"seungpyo.lee/BlogBoard/pkg/logger"
)

// PostHandler handles HTTP requests for posts and reactions.
type PostHandler struct {
	Service domain.PostService
	log     *logger.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service domain.PostService, log *logger.Logger) *PostHandler {
	return &PostHandler{Service: service, log: log}
}

// CreatePost handles POST /posts.
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req domain.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	post, err := h.Service.CreatePost(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewPost(post))
}

// GetPost handles GET /posts/:id.
func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	post, err := h.Service.GetPost(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.NewPost(post))
}

// GetPosts handles GET /posts?page&limit&search&filter&author.
func (h *PostHandler) GetPosts(c *gin.Context) {
	page, limit := util.ParsePagination(c.Query("page"), c.Query("limit"), util.DefaultLimit)
	filter := domain.PostFilter{
		Page:    page,
		Limit:   limit,
		Search:  c.Query("search"),
		Popular: c.Query("filter") == "popular",
	}
	if authorStr := c.Query("author"); authorStr != "" {
		authorID, err := strconv.ParseUint(authorStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author"})
			return
		}
		author := uint(authorID)
		filter.AuthorID = &author
	}
	result, err := h.Service.ListPosts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.NewPostList(result))
}

// UpdatePost handles PUT /posts/:id.
func (h *PostHandler) UpdatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req domain.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	post, err := h.Service.UpdatePost(c.Request.Context(), id, userID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.NewPost(post))
}

// DeletePost handles DELETE /posts/:id.
func (h *PostHandler) DeletePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.DeletePost(c.Request.Context(), id, userID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LikePost handles PUT /posts/:id/like.
func (h *PostHandler) LikePost(c *gin.Context) {
	h.react(c, h.Service.LikePost)
}

// DislikePost handles PUT /posts/:id/dislike.
func (h *PostHandler) DislikePost(c *gin.Context) {
	h.react(c, h.Service.DislikePost)
}

func (h *PostHandler) react(c *gin.Context, toggle func(ctx context.Context, id, userID uint) (*domain.ReactionState, error)) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	state, err := toggle(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.NewReactions(state))
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/internal/model"
	"seungpyo.lee/BlogBoard/internal/util"
	"seungpyo.lee/BlogBoard/pkg/logger"
)

type CommentHandler struct {
	Service domain.CommentService
	log     *logger.Logger
}

func NewCommentHandler(service domain.CommentService, log *logger.Logger) *CommentHandler {
	return &CommentHandler{Service: service, log: log}
}

// CreateComment handles POST /comments/:postId.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := parseID(c, "postId")
	if !ok {
		return
	}
	var req domain.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	comment, err := h.Service.CreateComment(c.Request.Context(), postID, userID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewComment(comment))
}

// GetComments handles GET /comments/:postId?page&limit.
func (h *CommentHandler) GetComments(c *gin.Context) {
	postID, ok := parseID(c, "postId")
	if !ok {
		return
	}
	page, limit := util.ParsePagination(c.Query("page"), c.Query("limit"), util.DefaultLimit)
	result, err := h.Service.ListComments(c.Request.Context(), postID, page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.NewCommentList(result))
}

// DeleteComment handles DELETE /comments/:commentId.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "commentId")
	if !ok {
		return
	}
	if err := h.Service.DeleteComment(c.Request.Context(), id, userID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "comment deleted"})
}

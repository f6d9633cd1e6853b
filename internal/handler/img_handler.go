package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/internal/model"
	"seungpyo.lee/BlogBoard/pkg/logger"
)

// multipart framing allowed on top of the image itself
const multipartOverhead = 1 << 20

type ImgHandler struct {
	Service  domain.ImgService
	maxBytes int64
	log      *logger.Logger
}

func NewImgHandler(service domain.ImgService, maxBytes int64, log *logger.Logger) *ImgHandler {
	return &ImgHandler{Service: service, maxBytes: maxBytes, log: log}
}

// Upload handles POST /upload with the image in the multipart field "image".
func (h *ImgHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer file.Close()

	// one byte past the limit is enough for the service to reject it
	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}
	img, err := h.Service.UploadImage(c.Request.Context(), userID, header.Filename, data)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.UploadResponse{Message: "image uploaded", ImageURL: img.URL})
}

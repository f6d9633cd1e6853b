package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/pkg/logger"
	"seungpyo.lee/BlogBoard/pkg/util"
)

// statusFor maps a service error to its HTTP status. Zero means the error is
// not a client error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidRefreshToken),
		errors.Is(err, domain.ErrInvalidResetToken),
		errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	}
	return 0
}

// respondError writes err as {"error": message}. Unexpected errors are logged
// and hidden behind a generic 500.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	if status := statusFor(err); status != 0 {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	log.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// currentUserID reads the identity set by the auth middleware.
func currentUserID(c *gin.Context) (uint, bool) {
	id, ok := util.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return 0, false
	}
	return id.UserID, true
}

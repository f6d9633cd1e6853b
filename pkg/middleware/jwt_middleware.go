package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"seungpyo.lee/BlogBoard/pkg/jwt"
	"seungpyo.lee/BlogBoard/pkg/util"
)

// AuthMiddleware returns a Gin middleware that validates the Bearer access token
// and stores the caller's identity in the request context.
func AuthMiddleware(tokenManager jwt.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		scheme, tokenString, found := strings.Cut(header, " ")
		tokenString = strings.TrimSpace(tokenString)
		if !found || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}
		claims, err := tokenManager.ValidateAccessToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
			return
		}
		ctx := util.WithIdentity(c.Request.Context(), util.Identity{UserID: claims.UserID, Username: claims.Username})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

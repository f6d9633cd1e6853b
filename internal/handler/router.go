package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"seungpyo.lee/BlogBoard/pkg/jwt"
	"seungpyo.lee/BlogBoard/pkg/logger"
	"seungpyo.lee/BlogBoard/pkg/middleware"
)

type Handlers struct {
	Auth    *AuthHandler
	Post    *PostHandler
	Comment *CommentHandler
	Img     *ImgHandler
}

type RouterConfig struct {
	CORSOrigins []string
	// UploadDir is served under UploadURL when set.
	UploadDir string
	UploadURL string
}

// NewRouter builds the engine with every API route.
func NewRouter(h Handlers, tm jwt.TokenManager, conf RouterConfig, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithWriter(log.Writer()), gin.Recovery())
	if len(conf.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     conf.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if conf.UploadDir != "" && conf.UploadURL != "" {
		r.Static(conf.UploadURL, conf.UploadDir)
	}

	requireAuth := middleware.AuthMiddleware(tm)

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh-token", h.Auth.RefreshToken)
		auth.POST("/logout", h.Auth.Logout)
		auth.POST("/forgot-password", h.Auth.ForgotPassword)
		auth.POST("/reset-password", h.Auth.ResetPassword)

		auth.GET("/me", requireAuth, h.Auth.Me)
		auth.PUT("/me", requireAuth, h.Auth.UpdateMe)
		auth.PUT("/me/remove-profile-image", requireAuth, h.Auth.RemoveProfileImage)
		auth.PUT("/me/password", requireAuth, h.Auth.ChangePassword)
		auth.DELETE("/delete-account", requireAuth, h.Auth.DeleteAccount)
	}

	posts := r.Group("/posts")
	{
		posts.GET("", h.Post.GetPosts)
		posts.GET("/:id", h.Post.GetPost)
		posts.POST("", requireAuth, h.Post.CreatePost)
		posts.PUT("/:id", requireAuth, h.Post.UpdatePost)
		posts.DELETE("/:id", requireAuth, h.Post.DeletePost)
		posts.PUT("/:id/like", requireAuth, h.Post.LikePost)
		posts.PUT("/:id/dislike", requireAuth, h.Post.DislikePost)
	}

	comments := r.Group("/comments")
	{
		comments.GET("/:postId", h.Comment.GetComments)
		comments.POST("/:postId", requireAuth, h.Comment.CreateComment)
		comments.DELETE("/:commentId", requireAuth, h.Comment.DeleteComment)
	}

	r.POST("/upload", requireAuth, h.Img.Upload)
	return r
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/internal/model"
	"seungpyo.lee/BlogBoard/pkg/logger"
)

// AuthHandler handles authentication and account requests.
type AuthHandler struct {
	Service domain.AuthService
	log     *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service domain.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{Service: service, log: log}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.Service.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewAuthResponse(res))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.Service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.NewAuthResponse(res))
}

// RefreshToken handles POST /auth/refresh-token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
		return
	}
	res, err := h.Service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.TokenResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.ExpiresAt,
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
		return
	}
	if err := h.Service.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "logged out"})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.Service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.NewUser(user))
}

// UpdateMe handles PUT /auth/me.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.Service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.NewUser(user))
}

// RemoveProfileImage handles PUT /auth/me/remove-profile-image.
func (h *AuthHandler) RemoveProfileImage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.Service.RemoveProfileImage(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.NewUser(user))
}

// ChangePassword handles PUT /auth/me/password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req domain.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.ChangePassword(c.Request.Context(), userID, req); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "password updated"})
}

// DeleteAccount handles DELETE /auth/delete-account.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.Service.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "account deleted"})
}

// ForgotPassword handles POST /auth/forgot-password. The answer does not
// reveal whether the email is registered.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "if the email is registered, a reset link has been sent"})
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req domain.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.ResetPassword(c.Request.Context(), req); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "password has been reset"})
}

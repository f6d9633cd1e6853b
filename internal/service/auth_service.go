package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"seungpyo.lee/BlogBoard/internal/config"
	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/internal/util"
	"seungpyo.lee/BlogBoard/pkg/jwt"
	"seungpyo.lee/BlogBoard/pkg/logger"
)

// AuthDeps groups the collaborators of the auth service.
type AuthDeps struct {
	Users        domain.UserRepository
	Tokens       domain.TokenRepository
	ResetTokens  domain.ResetTokenRepository
	Notifier     domain.ResetNotifier
	TokenManager jwt.TokenManager
	Config       *config.ServerConfig
	Logger       *logger.Logger
	// Now is the clock used for token expiry; nil means time.Now.
	Now          func() time.Time
}

// authService implements domain.AuthService.
type authService struct {
	users        domain.UserRepository
	tokens       domain.TokenRepository
	resetTokens  domain.ResetTokenRepository
	notifier     domain.ResetNotifier
	TokenManager jwt.TokenManager
	config       *config.ServerConfig
	log          *logger.Logger
	now          func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(deps AuthDeps) domain.AuthService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &authService{
		users:        deps.Users,
		tokens:       deps.Tokens,
		resetTokens:  deps.ResetTokens,
		notifier:     deps.Notifier,
		TokenManager: deps.TokenManager,
		config:       deps.Config,
		log:          deps.Logger,
		now:          now,
	}
}

// Register creates a new account and signs it in.
func (s *authService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResult, error) {
	username, err := normalizeUsername(req.Username)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("username %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &domain.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Infof("user registered: id=%d username=%s", user.ID, user.Username)
	return s.issueTokens(ctx, user)
}

// Login authenticates a user by email and password.
func (s *authService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := util.CheckPassword(user.Password, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return s.issueTokens(ctx, user)
}

// RefreshToken exchanges a stored refresh token for a new token pair.
// The presented token is consumed.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token is required", domain.ErrValidation)
	}
	record, err := s.tokens.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, err
	}
	if record.IsExpired(s.now()) {
		s.discard(ctx, refreshToken)
		return nil, domain.ErrInvalidRefreshToken
	}
	claims, err := s.TokenManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrMissingSecret) {
			return nil, err
		}
		s.discard(ctx, refreshToken)
		return nil, domain.ErrInvalidRefreshToken
	}
	if claims.UserID != record.UserID {
		s.discard(ctx, refreshToken)
		return nil, domain.ErrInvalidRefreshToken
	}
	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.discard(ctx, refreshToken)
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, err
	}

	if err := s.tokens.Delete(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

// Logout revokes one refresh token. Unknown tokens are ignored.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return fmt.Errorf("%w: refresh token is required", domain.ErrValidation)
	}
	return s.tokens.Delete(ctx, refreshToken)
}

// GetUserByID retrieves a user by their ID.
func (s *authService) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile changes the username and/or profile image. An empty
// profileImage clears it.
func (s *authService) UpdateProfile(ctx context.Context, userID uint, req domain.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Username != nil {
		username, err := normalizeUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		if username != user.Username {
			if _, err := s.users.GetByUsername(ctx, username); err == nil {
				return nil, fmt.Errorf("username %w", domain.ErrConflict)
			} else if !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			user.Username = username
		}
	}
	if req.ProfileImage != nil {
		image, err := normalizeImageURL(*req.ProfileImage)
		if err != nil {
			return nil, err
		}
		user.ProfileImage = image
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) RemoveProfileImage(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.ProfileImage = nil
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password, stores the new one and
// signs the user out everywhere.
func (s *authService) ChangePassword(ctx context.Context, userID uint, req domain.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := util.CheckPassword(user.Password, req.CurrentPassword); err != nil {
		return fmt.Errorf("%w: current password is incorrect", domain.ErrValidation)
	}
	if err := s.setPassword(ctx, user, req.NewPassword); err != nil {
		return err
	}
	s.log.Infof("password changed: user=%d", user.ID)
	return nil
}

// DeleteAccount removes the user with everything it owns.
func (s *authService) DeleteAccount(ctx context.Context, userID uint) error {
	if err := s.tokens.DeleteByUserID(ctx, userID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.log.Infof("account deleted: user=%d", userID)
	return nil
}

// RequestPasswordReset issues a reset token for the account with the given
// email. Unknown emails succeed silently.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Debugf("password reset requested for unknown email")
			return nil
		}
		return err
	}
	if err := s.resetTokens.DeleteByUserID(ctx, user.ID); err != nil {
		return err
	}
	token := uuid.NewString()
	if err := s.resetTokens.Create(ctx, token, user.ID, s.now().Add(s.config.ResetTokenTTL)); err != nil {
		return err
	}
	if err := s.notifier.SendPasswordReset(ctx, user, token); err != nil {
		return fmt.Errorf("failed to send reset token: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *authService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	record, err := s.resetTokens.GetByToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidResetToken
		}
		return err
	}
	if record.IsExpired(s.now()) {
		if err := s.resetTokens.Delete(ctx, req.Token); err != nil {
			s.log.Warnf("failed to drop expired reset token: %v", err)
		}
		return domain.ErrInvalidResetToken
	}
	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidResetToken
		}
		return err
	}
	if err := s.setPassword(ctx, user, req.NewPassword); err != nil {
		return err
	}
	if err := s.resetTokens.DeleteByUserID(ctx, user.ID); err != nil {
		return err
	}
	s.log.Infof("password reset: user=%d", user.ID)
	return nil
}

func (s *authService) setPassword(ctx context.Context, user *domain.User, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hashed, err := util.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hashed
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	return s.tokens.DeleteByUserID(ctx, user.ID)
}

func (s *authService) issueTokens(ctx context.Context, user *domain.User) (*domain.AuthResult, error) {
	accessToken, expiresAt, err := s.TokenManager.GenerateAccessToken(user.ID, user.Username, s.config.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, refreshExpiresAt, err := s.TokenManager.GenerateRefreshToken(user.ID, user.Username, s.config.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	if err := s.tokens.Create(ctx, refreshToken, user.ID, refreshExpiresAt); err != nil {
		return nil, err
	}
	return &domain.AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// discard drops a refresh token that failed validation.
func (s *authService) discard(ctx context.Context, refreshToken string) {
	if err := s.tokens.Delete(ctx, refreshToken); err != nil {
		s.log.Warnf("failed to drop rejected refresh token: %v", err)
	}
}

func normalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if n := util.TextLength(username); n < 3 || n > 30 {
		return "", fmt.Errorf("%w: username must be 3 to 30 characters", domain.ErrValidation)
	}
	return username, nil
}

func validatePassword(password string) error {
	if len(password) < util.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, util.MinPasswordLength)
	}
	if len(password) > util.MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, util.MaxPasswordBytes)
	}
	return nil
}

func normalizeImageURL(raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if len(raw) > 512 {
		return nil, fmt.Errorf("%w: image URL is too long", domain.ErrValidation)
	}
	return &raw, nil
}

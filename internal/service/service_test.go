package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
	"seungpyo.lee/BlogBoard/internal/config"
	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/internal/repository"
	"seungpyo.lee/BlogBoard/internal/testutil"
	"seungpyo.lee/BlogBoard/pkg/jwt"

	pkgconfig "seungpyo.lee/BlogBoard/pkg/config"
)

type recordingNotifier struct {
	mu     sync.Mutex
	tokens map[string]string // email -> last token
}

func (n *recordingNotifier) SendPasswordReset(_ context.Context, user *domain.User, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.tokens == nil {
		n.tokens = map[string]string{}
	}
	n.tokens[user.Email] = token
	return nil
}

func (n *recordingNotifier) token(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens[email]
}

type authFixture struct {
	db       *gorm.DB
	clock    *testutil.Clock
	tm       jwt.TokenManager
	tokens   domain.TokenRepository
	notifier *recordingNotifier
	svc      domain.AuthService
}

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		GlobalConfig: pkgconfig.GlobalConfig{
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 168 * time.Hour,
		},
		ResetTokenTTL:        time.Hour,
		ResetURLBase:         "http://localhost:5173/reset-password",
		PopularLikeThreshold: 2,
		UploadMaxBytes:       1 << 20,
	}
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	clock := testutil.NewClock(time.Now().UTC().Truncate(time.Second))
	tm := jwt.NewTokenManagerWithClock("test-secret", clock.Now)
	tokens := repository.NewTokenRepository(db)
	notifier := &recordingNotifier{}
	svc := NewAuthService(AuthDeps{
		Users:        repository.NewUserRepository(db),
		Tokens:       tokens,
		ResetTokens:  repository.NewResetTokenRepository(db),
		Notifier:     notifier,
		TokenManager: tm,
		Config:       testServerConfig(),
		Logger:       testutil.Logger(),
		Now:          clock.Now,
	})
	return &authFixture{db: db, clock: clock, tm: tm, tokens: tokens, notifier: notifier, svc: svc}
}

func (f *authFixture) register(t *testing.T, username string) *domain.AuthResult {
	t.Helper()
	res, err := f.svc.Register(context.Background(), domain.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", username, err)
	}
	return res
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"seungpyo.lee/BlogBoard/internal/domain"
)

func TestRegisterIssuesTokens(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, domain.RegisterRequest{Username: " alice ", Email: "Alice@Example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if res.User.Username != "alice" || res.User.Email != "alice@example.com" {
		t.Fatalf("user = %+v", res.User)
	}
	claims, err := f.tm.ValidateAccessToken(res.AccessToken)
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if claims.UserID != res.User.ID {
		t.Fatalf("claims.UserID = %d, want %d", claims.UserID, res.User.ID)
	}
	if want := f.clock.Now().Add(15 * time.Minute); !res.ExpiresAt.Equal(want) {
		t.Fatalf("ExpiresAt = %v, want %v", res.ExpiresAt, want)
	}
	stored, err := f.tokens.GetByToken(ctx, res.RefreshToken)
	if err != nil {
		t.Fatalf("refresh token not stored: %v", err)
	}
	if want := f.clock.Now().Add(168 * time.Hour); !stored.ExpiresAt.Equal(want) {
		t.Fatalf("refresh expiry = %v, want %v", stored.ExpiresAt, want)
	}
}

func TestRegisterRejects(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice")

	tests := []struct {
		name string
		req  domain.RegisterRequest
		want error
	}{
		{"email taken in another case", domain.RegisterRequest{Username: "alice2", Email: "ALICE@example.com", Password: "password123"}, domain.ErrConflict},
		{"username taken", domain.RegisterRequest{Username: "alice", Email: "new@example.com", Password: "password123"}, domain.ErrConflict},
		{"short password", domain.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "12345"}, domain.ErrValidation},
		{"short username", domain.RegisterRequest{Username: " b ", Email: "bob@example.com", Password: "password123"}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Register(context.Background(), tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("Register() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice")
	ctx := context.Background()

	if _, err := f.svc.Login(ctx, "alice@example.com", "wrong-password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("Login(wrong password) error = %v", err)
	}
	if _, err := f.svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("Login(unknown) error = %v", err)
	}
	res, err := f.svc.Login(ctx, "ALICE@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.User.Username != "alice" || res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("Login() = %+v", res)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	first := f.register(t, "alice")

	second, err := f.svc.RefreshToken(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken() error = %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}
	if _, err := f.tm.ValidateAccessToken(second.AccessToken); err != nil {
		t.Fatalf("new access token invalid: %v", err)
	}

	if _, err := f.svc.RefreshToken(ctx, first.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("reused refresh token error = %v, want ErrInvalidRefreshToken", err)
	}
	if _, err := f.svc.RefreshToken(ctx, second.RefreshToken); err != nil {
		t.Fatalf("rotated token rejected: %v", err)
	}
}

func TestRefreshTokenRejects(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	res := f.register(t, "alice")

	if _, err := f.svc.RefreshToken(ctx, res.AccessToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}
	if _, err := f.svc.RefreshToken(ctx, "garbage"); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("garbage accepted: %v", err)
	}
	if _, err := f.svc.RefreshToken(ctx, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty token error = %v", err)
	}

	f.clock.Advance(168*time.Hour + time.Second)
	if _, err := f.svc.RefreshToken(ctx, res.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expired token error = %v", err)
	}
	if _, err := f.tokens.GetByToken(ctx, res.RefreshToken); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expired token not deleted: %v", err)
	}
}

func TestLogoutRevokes(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	res := f.register(t, "alice")

	if err := f.svc.Logout(ctx, res.RefreshToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if err := f.svc.Logout(ctx, res.RefreshToken); err != nil {
		t.Fatalf("second Logout() error = %v", err)
	}
	if _, err := f.svc.RefreshToken(ctx, res.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("refresh after logout error = %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	res := f.register(t, "alice")
	id := res.User.ID

	err := f.svc.ChangePassword(ctx, id, domain.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newpassword"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("wrong current password error = %v", err)
	}
	if err := f.svc.ChangePassword(ctx, id, domain.ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "newpassword"}); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	if _, err := f.svc.RefreshToken(ctx, res.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("old session survived password change: %v", err)
	}
	if _, err := f.svc.Login(ctx, "alice@example.com", "password123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password still works: %v", err)
	}
	if _, err := f.svc.Login(ctx, "alice@example.com", "newpassword"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestPasswordReset(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	res := f.register(t, "alice")

	if err := f.svc.RequestPasswordReset(ctx, "nobody@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset(unknown) error = %v", err)
	}
	if err := f.svc.RequestPasswordReset(ctx, "alice@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
	token := f.notifier.token("alice@example.com")
	if token == "" {
		t.Fatal("no reset token delivered")
	}

	if err := f.svc.ResetPassword(ctx, domain.ResetPasswordRequest{Token: "bogus", NewPassword: "resetpass"}); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("bogus token error = %v", err)
	}
	if err := f.svc.ResetPassword(ctx, domain.ResetPasswordRequest{Token: token, NewPassword: "resetpass"}); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if err := f.svc.ResetPassword(ctx, domain.ResetPasswordRequest{Token: token, NewPassword: "again123"}); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("reused reset token error = %v", err)
	}
	if _, err := f.svc.Login(ctx, "alice@example.com", "resetpass"); err != nil {
		t.Fatalf("login with reset password: %v", err)
	}
	if _, err := f.svc.RefreshToken(ctx, res.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("session survived reset: %v", err)
	}
}

func TestPasswordResetExpires(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "alice")

	if err := f.svc.RequestPasswordReset(ctx, "alice@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
	first := f.notifier.token("alice@example.com")
	if err := f.svc.RequestPasswordReset(ctx, "alice@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
	second := f.notifier.token("alice@example.com")
	if err := f.svc.ResetPassword(ctx, domain.ResetPasswordRequest{Token: first, NewPassword: "resetpass"}); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("superseded token error = %v", err)
	}

	f.clock.Advance(time.Hour)
	if err := f.svc.ResetPassword(ctx, domain.ResetPasswordRequest{Token: second, NewPassword: "resetpass"}); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("expired token error = %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice").User
	f.register(t, "bob")

	taken := "bob"
	if _, err := f.svc.UpdateProfile(ctx, alice.ID, domain.UpdateProfileRequest{Username: &taken}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("UpdateProfile(taken) error = %v", err)
	}

	name, image := "alicia", "/uploads/a.png"
	user, err := f.svc.UpdateProfile(ctx, alice.ID, domain.UpdateProfileRequest{Username: &name, ProfileImage: &image})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if user.Username != "alicia" || user.ProfileImage == nil || *user.ProfileImage != image {
		t.Fatalf("user = %+v", user)
	}

	user, err = f.svc.RemoveProfileImage(ctx, alice.ID)
	if err != nil {
		t.Fatalf("RemoveProfileImage() error = %v", err)
	}
	if user.ProfileImage != nil {
		t.Fatalf("profile image = %v", *user.ProfileImage)
	}
	got, err := f.svc.GetUserByID(ctx, alice.ID)
	if err != nil || got.ProfileImage != nil || got.Username != "alicia" {
		t.Fatalf("GetUserByID() = %+v, %v", got, err)
	}
}

func TestDeleteAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	res := f.register(t, "alice")

	if err := f.svc.DeleteAccount(ctx, res.User.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if _, err := f.svc.GetUserByID(ctx, res.User.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("user still present: %v", err)
	}
	if _, err := f.svc.RefreshToken(ctx, res.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("session survived account deletion: %v", err)
	}
	if _, err := f.svc.Login(ctx, "alice@example.com", "password123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("deleted user can log in: %v", err)
	}
}

package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/pkg/logger"
)

func TestLogResetNotifierHidesTokenAtInfo(t *testing.T) {
	user := &domain.User{ID: 3, Email: "alice@example.com"}

	var info bytes.Buffer
	n := NewLogResetNotifier("http://localhost:5173/reset-password", logger.NewWithWriter("info", &info))
	if err := n.SendPasswordReset(context.Background(), user, "secret-token"); err != nil {
		t.Fatalf("SendPasswordReset() error = %v", err)
	}
	if strings.Contains(info.String(), "secret-token") {
		t.Fatalf("token written at info level: %s", info.String())
	}
	if !strings.Contains(info.String(), "user 3") {
		t.Fatalf("reset request not logged: %s", info.String())
	}

	var debug bytes.Buffer
	n = NewLogResetNotifier("http://localhost:5173/reset-password", logger.NewWithWriter("debug", &debug))
	if err := n.SendPasswordReset(context.Background(), user, "secret-token"); err != nil {
		t.Fatalf("SendPasswordReset() error = %v", err)
	}
	if !strings.Contains(debug.String(), "reset-password?token=secret-token") {
		t.Fatalf("debug log missing link: %s", debug.String())
	}
}

package service

import (
	"context"
	"net/url"

	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/pkg/logger"
)

// logResetNotifier stands in for a mailer. The link carries a live token, so
// it is only written at debug level; info level records the request alone.
type logResetNotifier struct {
	baseURL string
	log     *logger.Logger
}

func NewLogResetNotifier(baseURL string, log *logger.Logger) domain.ResetNotifier {
	return &logResetNotifier{baseURL: baseURL, log: log}
}

func (n *logResetNotifier) SendPasswordReset(_ context.Context, user *domain.User, token string) error {
	link, err := url.Parse(n.baseURL)
	if err != nil {
		return err
	}
	q := link.Query()
	q.Set("token", token)
	link.RawQuery = q.Encode()
	n.log.Infof("password reset issued for user %d", user.ID)
	n.log.Debugf("password reset link for %s: %s", user.Email, link.String())
	return nil
}

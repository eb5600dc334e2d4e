package service

import (
	"context"
	"log/slog"
)

// Mailer delivers account mails. The production deployment plugs a real
// provider in here; the default just logs the tokens.
type Mailer interface {
	SendVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogMailer writes mail contents to the log instead of sending them.
type LogMailer struct {
	Log *slog.Logger
}

func (m *LogMailer) logger() *slog.Logger {
	if m.Log != nil {
		return m.Log
	}
	return slog.Default()
}

// SendVerification logs the verification token.
func (m *LogMailer) SendVerification(_ context.Context, email, token string) error {
	m.logger().Info("verification mail", "email", email, "token", token)
	return nil
}

// SendPasswordReset logs the reset token.
func (m *LogMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.logger().Info("password reset mail", "email", email, "token", token)
	return nil
}

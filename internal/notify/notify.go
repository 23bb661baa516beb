// Package notify delivers reminder messages over email, Telegram or the log.
package notify

import (
	"context"
	"fmt"

	"trackpal/internal/logger"
	"trackpal/internal/model"
)

// Channel is a transport for reminder messages.
type Channel interface {
	Name() string
	// Resolve returns the profile's address on this channel.
	Resolve(profile model.Profile) (string, bool)
	Send(ctx context.Context, to, subject, body string) error
}

// LogChannel writes messages to the application log instead of sending them.
type LogChannel struct{}

func (LogChannel) Name() string { return "log" }

func (LogChannel) Resolve(profile model.Profile) (string, bool) {
	if profile.Email != "" {
		return profile.Email, true
	}
	return fmt.Sprintf("user-%d", profile.ID), true
}

func (LogChannel) Send(_ context.Context, to, subject, body string) error {
	logger.Info("notification", "to", to, "subject", subject, "body", body)
	return nil
}

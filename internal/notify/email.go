package notify

import (
	"context"
	"strings"

	"github.com/resend/resend-go/v2"

	"trackpal/internal/apperr"
	"trackpal/internal/model"
)

// EmailSender is the part of the Resend client used for delivery.
type EmailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// EmailChannel sends plain-text reminders through Resend.
type EmailChannel struct {
	sender EmailSender
	from   string
}

// NewEmailChannel builds a Resend-backed channel for the given API key.
func NewEmailChannel(apiKey, from string) *EmailChannel {
	client := resend.NewClient(apiKey)
	return NewEmailChannelWithSender(client.Emails, from)
}

func NewEmailChannelWithSender(sender EmailSender, from string) *EmailChannel {
	return &EmailChannel{sender: sender, from: from}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Resolve(profile model.Profile) (string, bool) {
	email := strings.TrimSpace(profile.Email)
	return email, email != ""
}

func (c *EmailChannel) Send(ctx context.Context, to, subject, body string) error {
	_, err := c.sender.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return apperr.Upstream("send email", err)
	}
	return nil
}

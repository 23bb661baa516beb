package notify

import (
	"context"
	"fmt"
	"html"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"trackpal/internal/apperr"
	"trackpal/internal/model"
)

// MessageSender is the part of tgbotapi.BotAPI used for delivery.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramChannel sends reminders to linked Telegram chats.
type TelegramChannel struct {
	api MessageSender
}

func NewTelegramChannel(api MessageSender) *TelegramChannel {
	return &TelegramChannel{api: api}
}

func (c *TelegramChannel) Name() string { return "telegram" }

func (c *TelegramChannel) Resolve(profile model.Profile) (string, bool) {
	if profile.TelegramChatID == 0 {
		return "", false
	}
	return strconv.FormatInt(profile.TelegramChatID, 10), true
}

func (c *TelegramChannel) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return apperr.Invalid("to", "telegram chat id must be numeric")
	}
	text := fmt.Sprintf("<b>%s</b>\n\n%s", html.EscapeString(subject), html.EscapeString(body))
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := c.api.Send(msg); err != nil {
		return apperr.Upstream("send telegram message", err)
	}
	return nil
}

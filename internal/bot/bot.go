package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"trackpal/internal/logger"
	"trackpal/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageSubtasks
	stagePriority
	stageDeadline
)

const (
	cbTogglePrefix = "toggle:"
	cbDeletePrefix = "delete:"
)

const (
	btnSkip          = "⏭️ Skip"
	btnDone          = "✔️ Done"
	btnCancelDialog  = "⏪ Cancel"
	menuLabelNewGoal = "➕ New goal"
	menuLabelGoals   = "🎯 Goals"
	menuLabelDue     = "⏳ Due soon"
	menuLabelStreak  = "🔥 Streak"
)

type conversationState struct {
	stage conversationStage
	input service.GoalInput
}

// API is the part of tgbotapi.BotAPI the bot uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Services are the use cases exposed in chat.
type Services struct {
	Profiles  *service.ProfileService
	Goals     *service.GoalService
	Reminders *service.ReminderService
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api           API
	svc           Services
	loc           *time.Location
	now           func() time.Time
	conversations map[int64]*conversationState
	mu            sync.Mutex
}

// NewAPI authorizes against Telegram with token.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	logger.Info("bot authorized", "account", api.Self.UserName)
	return api, nil
}

func New(api API, svc Services, loc *time.Location) *Bot {
	if loc == nil {
		loc = time.UTC
	}
	return &Bot{
		api:           api,
		svc:           svc,
		loc:           loc,
		now:           time.Now,
		conversations: make(map[int64]*conversationState),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				logger.Error("handle callback", "err", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				logger.Error("handle message", "err", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	chatID := msg.Chat.ID

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(chatID)
		return b.sendText(chatID, "⏪ Goal creation cancelled.")
	}

	if msg.IsCommand() {
		logger.Debug("command", "chat", chatID, "command", msg.Command(), "args", msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	if b.hasConversation(chatID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(chatID, "I did not get that. Send /newgoal to add a goal or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "link":
		return b.handleLink(ctx, msg)
	case "newgoal":
		return b.startNewGoalConversation(ctx, msg)
	case "goals":
		return b.handleGoals(ctx, msg)
	case "due":
		return b.handleDue(ctx, msg)
	case "streak":
		return b.handleStreak(ctx, msg)
	case "done":
		return b.handleToggleCommand(ctx, msg, true)
	case "undo":
		return b.handleToggleCommand(ctx, msg, false)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "cancel":
		b.clearConversation(msg.Chat.ID)
		return b.sendText(msg.Chat.ID, "⏪ Goal creation cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. Have a look at /help.")
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNewGoal):
		return true, b.startNewGoalConversation(ctx, msg)
	case strings.ToLower(menuLabelGoals):
		return true, b.handleGoals(ctx, msg)
	case strings.ToLower(menuLabelDue):
		return true, b.handleDue(ctx, msg)
	case strings.ToLower(menuLabelStreak):
		return true, b.handleStreak(ctx, msg)
	default:
		return false, nil
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) setConversation(chatID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[chatID] = state
}

func (b *Bot) getConversation(chatID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[chatID]
}

func (b *Bot) hasConversation(chatID int64) bool {
	return b.getConversation(chatID) != nil
}

func (b *Bot) clearConversation(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, chatID)
}

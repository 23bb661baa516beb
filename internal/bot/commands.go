package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"trackpal/internal/aggregate"
	"trackpal/internal/apperr"
	"trackpal/internal/logger"
	"trackpal/internal/model"
	"trackpal/internal/service"
)

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	if code := strings.TrimSpace(msg.CommandArguments()); code != "" {
		return b.link(ctx, msg.Chat.ID, code)
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I keep track of your weekly goals.</b>\n\n"+
			"Link this chat to your TrackPal profile with /link &lt;code&gt;, then:\n"+
			"• /newgoal — add a goal for this week\n"+
			"• /goals — this week's goals and subtasks\n"+
			"• /due — goals due today or tomorrow\n"+
			"• /streak — weekly streak and progress\n"+
			"• /help — all commands",
		escape(name),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"• /link &lt;code&gt; — connect this chat to your profile\n" +
		"• /newgoal — add a goal step by step\n" +
		"• /goals — list this week's goals, tap a subtask to toggle it\n" +
		"• /done &lt;id&gt; — mark a subtask as completed (e.g. /done 7)\n" +
		"• /undo &lt;id&gt; — mark a subtask as not completed\n" +
		"• /delete &lt;id&gt; — delete a goal with its subtasks\n" +
		"• /due — goals due today or tomorrow\n" +
		"• /streak — weekly streak and progress\n" +
		"• /cancel — cancel the current input"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleLink(ctx context.Context, msg *tgbotapi.Message) error {
	code := strings.TrimSpace(msg.CommandArguments())
	if code == "" {
		return b.sendText(msg.Chat.ID, "Send the link code from your profile: /link 1a2b3c4d5e6f")
	}
	return b.link(ctx, msg.Chat.ID, code)
}

func (b *Bot) link(ctx context.Context, chatID int64, code string) error {
	profile, err := b.svc.Profiles.LinkTelegram(ctx, code, chatID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return b.sendText(chatID, "This link code is unknown or was already used.")
		}
		return b.replyError(chatID, "Could not link the chat", err)
	}
	logger.Info("telegram chat linked", "profile", profile.ID, "chat", chatID)

	name := profile.DisplayName
	if name == "" {
		name = profile.Email
	}
	return b.sendText(chatID, fmt.Sprintf("🔗 Linked to <b>%s</b>. Reminders will arrive here.", escape(name)))
}

// profileFor resolves the linked profile or tells the user to link first.
// A nil profile with nil error means the reply was already sent.
func (b *Bot) profileFor(ctx context.Context, chatID int64) (*model.Profile, error) {
	profile, err := b.svc.Profiles.ProfileForChat(ctx, chatID)
	if err == nil {
		return profile, nil
	}
	if apperr.IsNotFound(err) {
		return nil, b.sendText(chatID, "This chat is not linked yet. Send /link &lt;code&gt; with the code from your profile.")
	}
	return nil, b.replyError(chatID, "Could not load your profile", err)
}

func (b *Bot) startNewGoalConversation(ctx context.Context, msg *tgbotapi.Message) error {
	profile, err := b.profileFor(ctx, msg.Chat.ID)
	if profile == nil {
		return err
	}
	logger.Debug("start new goal conversation", "profile", profile.ID)
	b.setConversation(msg.Chat.ID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New goal for this week.\n<b>Step 1:</b> what is the goal?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	state := b.getConversation(chatID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(chatID, "The goal needs a title.", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageSubtasks
		return b.sendWithReplyMarkup(chatID,
			"✏️ <b>Step 2:</b> send the subtasks, one per line. Send more messages to add more, then press «Done».",
			doneKeyboard())
	case stageSubtasks:
		if !isDoneInput(text) && !isSkipInput(text) {
			state.input.Subtasks = append(state.input.Subtasks, parseSubtaskLines(text)...)
			return b.sendWithReplyMarkup(chatID,
				fmt.Sprintf("Got %d subtask(s). Add more or press «Done».", len(state.input.Subtasks)),
				doneKeyboard())
		}
		state.stage = stagePriority
		return b.sendWithReplyMarkup(chatID, "🏷 <b>Step 3:</b> pick a priority.", priorityKeyboard())
	case stagePriority:
		priority := model.Priority(strings.ToLower(text))
		if !priority.Valid() {
			return b.sendWithReplyMarkup(chatID, "Pick low, medium or high.", priorityKeyboard())
		}
		state.input.Priority = priority
		state.stage = stageDeadline
		return b.sendWithReplyMarkup(chatID, "⏰ <b>Step 4:</b> deadline as <code>2025-11-30</code> (or «Skip»).", skipKeyboard())
	case stageDeadline:
		if !isSkipInput(text) {
			if _, err := aggregate.ParseDate(text); err != nil {
				return b.sendWithReplyMarkup(chatID, "I cannot read that date. Use <code>2025-11-30</code> or «Skip».", skipKeyboard())
			}
			state.input.Deadline = text
		}
		err := b.finishGoalCreation(ctx, chatID, state.input)
		b.clearConversation(chatID)
		return err
	default:
		b.clearConversation(chatID)
		return b.sendText(chatID, "Input reset. Try again with /newgoal.")
	}
}

func (b *Bot) finishGoalCreation(ctx context.Context, chatID int64, input service.GoalInput) error {
	profile, err := b.profileFor(ctx, chatID)
	if profile == nil {
		return err
	}

	goal, err := b.svc.Goals.CreateGoal(ctx, profile.ID, input)
	if err != nil {
		return b.replyError(chatID, "Could not save the goal", err)
	}
	logger.Info("goal created", "goal", goal.ID, "profile", profile.ID, "subtasks", len(goal.Subtasks))

	msg := tgbotapi.NewMessage(chatID, "✅ <b>Goal saved</b>\n"+formatGoal(*goal))
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	return b.sendGoalList(ctx, chatID, profile.ID)
}

func (b *Bot) handleGoals(ctx context.Context, msg *tgbotapi.Message) error {
	profile, err := b.profileFor(ctx, msg.Chat.ID)
	if profile == nil {
		return err
	}
	return b.sendGoalList(ctx, msg.Chat.ID, profile.ID)
}

func (b *Bot) sendGoalList(ctx context.Context, chatID int64, userID uint) error {
	now := b.now().In(b.loc)
	goals, err := b.svc.Goals.ListWeek(ctx, userID, now)
	if err != nil {
		return b.replyError(chatID, "Could not load goals", err)
	}
	if len(goals) == 0 {
		return b.sendText(chatID, "No goals this week yet. Add one with /newgoal.")
	}

	sortGoals(goals)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📋 <b>Week of %s</b>\n", aggregate.WeekOf(now).Key()))
	builder.WriteString("Tap a subtask to toggle it.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, goal := range goals {
		builder.WriteString(formatGoal(goal))
		builder.WriteByte('\n')
		for _, st := range goal.Subtasks {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("%s #%d · %s", checkbox(st.Completed), st.ID, shortTitle(st.Title, 24)),
					toggleData(st.ID, !st.Completed),
				),
			))
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("\U0001F5D1 Delete #%d · %s", goal.ID, shortTitle(goal.Title, 20)),
				fmt.Sprintf("%s%d", cbDeletePrefix, goal.ID),
			),
		))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleToggleCommand(ctx context.Context, msg *tgbotapi.Message, completed bool) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Give the subtask ID: /%s 12", msg.Command()))
	}
	subtaskID, err := parseID(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, "The subtask ID must be a number.")
	}
	return b.toggleSubtask(ctx, msg.Chat.ID, subtaskID, completed, false)
}

func (b *Bot) toggleSubtask(ctx context.Context, chatID int64, subtaskID uint, completed, refresh bool) error {
	profile, err := b.profileFor(ctx, chatID)
	if profile == nil {
		return err
	}

	goal, err := b.svc.Goals.ToggleSubtask(ctx, profile.ID, subtaskID, completed)
	if err != nil {
		if apperr.IsNotFound(err) {
			return b.sendText(chatID, "Subtask not found.")
		}
		return b.replyError(chatID, "Could not update the subtask", err)
	}
	logger.Debug("subtask toggled", "subtask", subtaskID, "completed", completed, "goal_state", goal.State)

	if refresh {
		return b.sendGoalList(ctx, chatID, profile.ID)
	}
	return b.sendText(chatID, formatGoal(*goal))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.sendText(msg.Chat.ID, "Give the goal ID: /delete 12")
	}
	goalID, err := parseID(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, "The goal ID must be a number.")
	}
	return b.deleteGoal(ctx, msg.Chat.ID, goalID)
}

func (b *Bot) deleteGoal(ctx context.Context, chatID int64, goalID uint) error {
	profile, err := b.profileFor(ctx, chatID)
	if profile == nil {
		return err
	}

	goal, err := b.svc.Goals.GetGoal(ctx, profile.ID, goalID)
	if err == nil {
		err = b.svc.Goals.DeleteGoal(ctx, profile.ID, goalID)
	}
	if err != nil {
		if apperr.IsNotFound(err) {
			return b.sendText(chatID, "Goal not found.")
		}
		return b.replyError(chatID, "Could not delete the goal", err)
	}
	logger.Info("goal deleted", "goal", goalID, "profile", profile.ID)
	return b.sendText(chatID, fmt.Sprintf("🗑 Goal \"%s\" deleted.", escape(goal.Title)))
}

func (b *Bot) handleDue(ctx context.Context, msg *tgbotapi.Message) error {
	profile, err := b.profileFor(ctx, msg.Chat.ID)
	if profile == nil {
		return err
	}
	goals, err := b.svc.Reminders.DueSoonFor(ctx, profile.ID, b.now().In(b.loc))
	if err != nil {
		return b.replyError(msg.Chat.ID, "Could not load due goals", err)
	}
	return b.sendText(msg.Chat.ID, formatDue(goals))
}

func (b *Bot) handleStreak(ctx context.Context, msg *tgbotapi.Message) error {
	profile, err := b.profileFor(ctx, msg.Chat.ID)
	if profile == nil {
		return err
	}
	progress, err := b.svc.Goals.WeeklyProgress(ctx, profile.ID, b.now().In(b.loc))
	if err != nil {
		return b.replyError(msg.Chat.ID, "Could not load progress", err)
	}
	return b.sendText(msg.Chat.ID, formatStreak(*profile, progress))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		logger.Warn("callback ack", "err", err)
	}

	chatID := cb.Message.Chat.ID
	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbTogglePrefix):
		subtaskID, completed, err := parseToggleData(data)
		if err != nil {
			logger.Warn("bad toggle callback", "data", data, "err", err)
			return nil
		}
		return b.toggleSubtask(ctx, chatID, subtaskID, completed, true)
	case strings.HasPrefix(data, cbDeletePrefix):
		goalID, err := parseID(strings.TrimPrefix(data, cbDeletePrefix))
		if err != nil {
			logger.Warn("bad delete callback", "data", data, "err", err)
			return nil
		}
		return b.deleteGoal(ctx, chatID, goalID)
	default:
		return nil
	}
}

// replyError tells the user what went wrong. Storage and delivery failures
// are logged and reported generically.
func (b *Bot) replyError(chatID int64, prefix string, err error) error {
	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		return b.sendText(chatID, fmt.Sprintf("%s: %s", prefix, escape(verr.Message)))
	}
	logger.Error(prefix, "chat", chatID, "err", err)
	return b.sendText(chatID, prefix+". Please try again later.")
}

func parseID(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	if value == 0 {
		return 0, fmt.Errorf("id must be positive")
	}
	return uint(value), nil
}

func toggleData(subtaskID uint, completed bool) string {
	flag := 0
	if completed {
		flag = 1
	}
	return fmt.Sprintf("%s%d:%d", cbTogglePrefix, subtaskID, flag)
}

func parseToggleData(data string) (uint, bool, error) {
	raw := strings.TrimPrefix(data, cbTogglePrefix)
	idPart, flag, ok := strings.Cut(raw, ":")
	if !ok {
		return 0, false, fmt.Errorf("missing completion flag")
	}
	id, err := parseID(idPart)
	if err != nil {
		return 0, false, err
	}
	switch flag {
	case "1":
		return id, true, nil
	case "0":
		return id, false, nil
	default:
		return 0, false, fmt.Errorf("invalid completion flag %q", flag)
	}
}

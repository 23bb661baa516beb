package bot

import (
	"fmt"
	"html"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"trackpal/internal/aggregate"
	"trackpal/internal/model"
	"trackpal/internal/service"
)

const (
	iconNotStarted = "⚪"
	iconInProgress = "🟡"
	iconDone       = "🟢"
)

var priorityRank = map[model.Priority]int{
	model.PriorityHigh:   0,
	model.PriorityMedium: 1,
	model.PriorityLow:    2,
}

// sortGoals orders by deadline (undated last), then priority, then ID.
func sortGoals(goals []model.Goal) {
	sort.SliceStable(goals, func(i, j int) bool {
		a, b := goals[i], goals[j]
		if a.Deadline != nil && b.Deadline != nil {
			if !a.Deadline.Equal(*b.Deadline) {
				return a.Deadline.Before(*b.Deadline)
			}
		} else if a.Deadline != nil {
			return true
		} else if b.Deadline != nil {
			return false
		}
		if priorityRank[a.Priority] != priorityRank[b.Priority] {
			return priorityRank[a.Priority] < priorityRank[b.Priority]
		}
		return a.ID < b.ID
	})
}

func stateIcon(state model.GoalState) string {
	switch state {
	case model.GoalDone:
		return iconDone
	case model.GoalInProgress:
		return iconInProgress
	default:
		return iconNotStarted
	}
}

func checkbox(completed bool) string {
	if completed {
		return "✅"
	}
	return "⬜"
}

func formatGoal(goal model.Goal) string {
	var b strings.Builder
	completed, total := aggregate.Progress(goal.Subtasks)
	b.WriteString(fmt.Sprintf("%s <b>#%d</b> %s · %d/%d (%d%%)\n",
		stateIcon(goal.State), goal.ID, escape(goal.Title), completed, total, aggregate.Percent(completed, total)))
	if goal.Priority != "" {
		b.WriteString(fmt.Sprintf("   🏷 Priority: %s\n", goal.Priority))
	}
	if goal.Deadline != nil {
		b.WriteString(fmt.Sprintf("   ⏰ Deadline: %s\n", aggregate.FormatDate(*goal.Deadline)))
	}
	for _, st := range goal.Subtasks {
		b.WriteString(fmt.Sprintf("   %s #%d %s\n", checkbox(st.Completed), st.ID, escape(st.Title)))
	}
	return b.String()
}

func formatDue(goals []model.Goal) string {
	if len(goals) == 0 {
		return "Nothing due today or tomorrow. 🎉"
	}
	sorted := append([]model.Goal(nil), goals...)
	sortGoals(sorted)

	var b strings.Builder
	b.WriteString("⏳ <b>Due soon</b>\n")
	for _, g := range sorted {
		b.WriteString(fmt.Sprintf("• %s (deadline %s)\n", escape(g.Title), aggregate.FormatDate(*g.Deadline)))
	}
	return strings.TrimSpace(b.String())
}

func formatStreak(profile model.Profile, progress service.WeeklyProgress) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔥 <b>Weekly streak:</b> %d\n", profile.WeeklyStreakCount))
	b.WriteString(fmt.Sprintf("🏆 Longest: %d\n", profile.WeeklyLongestStreak))
	if profile.WeeklyLastStreakWeek != "" {
		b.WriteString(fmt.Sprintf("📅 Last evaluated: week of %s\n", profile.WeeklyLastStreakWeek))
	}
	b.WriteString(fmt.Sprintf("\n📈 Week of %s: %d/%d subtasks (%d%%) across %d goal(s)",
		progress.Week, progress.Completed, progress.Total, progress.Percent, progress.Goals))
	return b.String()
}

// parseSubtaskLines turns a multi-line message into subtask inputs, one per
// non-blank line. Leading list markers are dropped.
func parseSubtaskLines(text string) []service.SubtaskInput {
	var out []service.SubtaskInput
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-•*")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, service.SubtaskInput{Title: line})
	}
	return out
}

func shortTitle(title string, maxLen int) string {
	clean := strings.Join(strings.Fields(title), " ")
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewGoal),
			tgbotapi.NewKeyboardButton(menuLabelGoals),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelDue),
			tgbotapi.NewKeyboardButton(menuLabelStreak),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func doneKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnDone),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func priorityKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(string(model.PriorityLow)),
			tgbotapi.NewKeyboardButton(string(model.PriorityMedium)),
			tgbotapi.NewKeyboardButton(string(model.PriorityHigh)),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "skip"
}

func isDoneInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnDone) || value == "done"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "cancel"
}

package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"trackpal/internal/aggregate"
	"trackpal/internal/logger"
	"trackpal/internal/model"
	"trackpal/internal/notify"
)

// ReminderSubject is the subject line of due-soon reminders.
const ReminderSubject = "Reminder: Your Goals Are Due Soon"

// ReminderReport summarizes one reminder run.
type ReminderReport struct {
	Users   int `json:"users"`
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// ReminderService builds and dispatches due-soon reminders.
type ReminderService struct {
	goals       GoalStore
	profiles    ProfileStore
	channel     notify.Channel
	loc         *time.Location
	userTimeout time.Duration
}

func NewReminderService(goals GoalStore, profiles ProfileStore, channel notify.Channel, loc *time.Location) *ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderService{goals: goals, profiles: profiles, channel: channel, loc: loc, userTimeout: DefaultUserTimeout}
}

// SetUserTimeout changes the deadline of each recipient's lookup and send.
// Non-positive values restore the default.
func (s *ReminderService) SetUserTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultUserTimeout
	}
	s.userTimeout = d
}

// DueSoon returns open goals with a deadline today or tomorrow, grouped by
// user.
func (s *ReminderService) DueSoon(ctx context.Context, now time.Time) (map[uint][]model.Goal, error) {
	now = now.In(s.loc)
	today, tomorrow := aggregate.DueWindow(now)
	goals, err := s.goals.ListGoalsDueBetween(ctx, today, tomorrow)
	if err != nil {
		return nil, err
	}
	return aggregate.GroupDueSoon(goals, now), nil
}

// DueSoonFor returns the due-soon goals of one user.
func (s *ReminderService) DueSoonFor(ctx context.Context, userID uint, now time.Time) ([]model.Goal, error) {
	now = now.In(s.loc)
	today, tomorrow := aggregate.DueWindow(now)
	goals, err := s.goals.ListUserGoalsDueBetween(ctx, userID, today, tomorrow)
	if err != nil {
		return nil, err
	}
	due := goals[:0]
	for _, g := range goals {
		if aggregate.IsDueSoon(g, now) {
			due = append(due, g)
		}
	}
	return due, nil
}

// SendReminders sends one message per user with due-soon goals. Users with no
// address on the channel are skipped; send failures are logged and not
// retried.
func (s *ReminderService) SendReminders(ctx context.Context, now time.Time) (ReminderReport, error) {
	grouped, err := s.DueSoon(ctx, now)
	if err != nil {
		return ReminderReport{}, err
	}

	userIDs := make([]uint, 0, len(grouped))
	for id := range grouped {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	report := ReminderReport{Users: len(userIDs)}
	for _, userID := range userIDs {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		userCtx, cancel := context.WithTimeout(ctx, s.userTimeout)
		sent, err := s.remind(userCtx, userID, grouped[userID])
		cancel()
		switch {
		case err != nil:
			report.Failed++
			logger.Error("send reminder", "user", userID, "channel", s.channel.Name(), "err", err)
		case !sent:
			report.Skipped++
			logger.Warn("no address for reminder", "user", userID, "channel", s.channel.Name())
		default:
			report.Sent++
		}
	}

	logger.Info("reminder run finished",
		"channel", s.channel.Name(),
		"users", report.Users,
		"sent", report.Sent,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report, nil
}

// remind reports false when the user has no address on the channel.
func (s *ReminderService) remind(ctx context.Context, userID uint, goals []model.Goal) (bool, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load profile: %w", err)
	}
	to, ok := s.channel.Resolve(*profile)
	if !ok {
		return false, nil
	}
	if err := s.channel.Send(ctx, to, ReminderSubject, ReminderBody(goals)); err != nil {
		return false, err
	}
	return true, nil
}

// ReminderBody renders the plain-text reminder listing goals in deadline
// order.
func ReminderBody(goals []model.Goal) string {
	sorted := append([]model.Goal(nil), goals...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Deadline.Before(*sorted[j].Deadline)
	})

	var builder strings.Builder
	builder.WriteString("Hi,\n\nYou have the following goals due soon:\n\n")
	for _, g := range sorted {
		builder.WriteString(fmt.Sprintf("- %s (Deadline: %s)\n", g.Title, aggregate.FormatDate(*g.Deadline)))
	}
	builder.WriteString("\nBest regards,\nYour App Team")
	return builder.String()
}

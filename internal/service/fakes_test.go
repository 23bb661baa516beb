package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"trackpal/internal/apperr"
	"trackpal/internal/model"
)

// memGoals is an in-memory GoalStore. Range listings for users in stall
// block until ctx ends.
type memGoals struct {
	goals   map[uint]*model.Goal
	nextID  uint
	listErr map[uint]error
	stall   map[uint]bool
}

func newMemGoals() *memGoals {
	return &memGoals{goals: make(map[uint]*model.Goal), listErr: make(map[uint]error), stall: make(map[uint]bool)}
}

func (m *memGoals) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memGoals) CreateGoal(_ context.Context, goal *model.Goal) error {
	goal.ID = m.id()
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = time.Now().UTC()
	}
	for i := range goal.Subtasks {
		goal.Subtasks[i].ID = m.id()
		goal.Subtasks[i].GoalID = goal.ID
	}
	stored := *goal
	stored.Subtasks = append([]model.Subtask(nil), goal.Subtasks...)
	m.goals[goal.ID] = &stored
	return nil
}

func (m *memGoals) GetGoal(_ context.Context, userID, goalID uint) (*model.Goal, error) {
	g, ok := m.goals[goalID]
	if !ok || g.UserID != userID {
		return nil, apperr.NotFound("goal")
	}
	cp := *g
	cp.Subtasks = append([]model.Subtask(nil), g.Subtasks...)
	return &cp, nil
}

func (m *memGoals) ListGoals(_ context.Context, userID uint) ([]model.Goal, error) {
	var out []model.Goal
	for _, g := range m.goals {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *memGoals) ReplaceGoal(_ context.Context, goal *model.Goal) error {
	if _, ok := m.goals[goal.ID]; !ok {
		return apperr.NotFound("goal")
	}
	for i := range goal.Subtasks {
		if goal.Subtasks[i].ID == 0 {
			goal.Subtasks[i].ID = m.id()
		}
		goal.Subtasks[i].GoalID = goal.ID
	}
	stored := *goal
	stored.Subtasks = append([]model.Subtask(nil), goal.Subtasks...)
	m.goals[goal.ID] = &stored
	return nil
}

func (m *memGoals) DeleteGoal(_ context.Context, userID, goalID uint) error {
	g, ok := m.goals[goalID]
	if !ok || g.UserID != userID {
		return apperr.NotFound("goal")
	}
	delete(m.goals, goalID)
	return nil
}

func (m *memGoals) findSubtask(subtaskID uint) (*model.Goal, int) {
	for _, g := range m.goals {
		for i := range g.Subtasks {
			if g.Subtasks[i].ID == subtaskID {
				return g, i
			}
		}
	}
	return nil, -1
}

func (m *memGoals) GetSubtask(_ context.Context, subtaskID uint) (*model.Subtask, error) {
	g, i := m.findSubtask(subtaskID)
	if g == nil {
		return nil, apperr.NotFound("subtask")
	}
	st := g.Subtasks[i]
	return &st, nil
}

func (m *memGoals) ListSubtasks(_ context.Context, goalID uint) ([]model.Subtask, error) {
	if g, ok := m.goals[goalID]; ok {
		return append([]model.Subtask(nil), g.Subtasks...), nil
	}
	return nil, nil
}

func (m *memGoals) SetSubtaskCompleted(_ context.Context, subtaskID uint, completed bool) (*model.Subtask, error) {
	g, i := m.findSubtask(subtaskID)
	if g == nil {
		return nil, apperr.NotFound("subtask")
	}
	g.Subtasks[i].Completed = completed
	st := g.Subtasks[i]
	return &st, nil
}

func (m *memGoals) SetGoalState(_ context.Context, goalID uint, state model.GoalState) error {
	g, ok := m.goals[goalID]
	if !ok {
		return apperr.NotFound("goal")
	}
	g.State = state
	return nil
}

func (m *memGoals) ToggleSubtask(ctx context.Context, subtaskID uint, completed bool, derive func([]model.Subtask) model.GoalState) (*model.Goal, error) {
	st, err := m.SetSubtaskCompleted(ctx, subtaskID, completed)
	if err != nil {
		return nil, err
	}
	g := m.goals[st.GoalID]
	g.State = derive(g.Subtasks)
	cp := *g
	return &cp, nil
}

func (m *memGoals) ListGoalsForUserInRange(ctx context.Context, userID uint, start, end time.Time) ([]model.Goal, error) {
	if m.stall[userID] {
		<-ctx.Done()
		return nil, apperr.Upstream("list goals", ctx.Err())
	}
	if err := m.listErr[userID]; err != nil {
		return nil, err
	}
	var out []model.Goal
	for _, g := range m.goals {
		if g.UserID == userID && !g.CreatedAt.Before(start) && !g.CreatedAt.After(end) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *memGoals) ListGoalsDueBetween(_ context.Context, from, to time.Time) ([]model.Goal, error) {
	var out []model.Goal
	for _, g := range m.goals {
		if g.State == model.GoalDone || g.Deadline == nil {
			continue
		}
		if !g.Deadline.Before(from) && !g.Deadline.After(to) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *memGoals) ListUserGoalsDueBetween(ctx context.Context, userID uint, from, to time.Time) ([]model.Goal, error) {
	all, err := m.ListGoalsDueBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	var out []model.Goal
	for _, g := range all {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

// memProfiles is an in-memory ProfileStore.
type memProfiles struct {
	profiles  map[uint]*model.Profile
	nextID    uint
	updateErr map[uint]error
	updates   int
}

func newMemProfiles(profiles ...model.Profile) *memProfiles {
	m := &memProfiles{profiles: make(map[uint]*model.Profile), updateErr: make(map[uint]error)}
	for i := range profiles {
		p := profiles[i]
		m.profiles[p.ID] = &p
		if p.ID > m.nextID {
			m.nextID = p.ID
		}
	}
	return m
}

func (m *memProfiles) CreateProfile(_ context.Context, profile *model.Profile) error {
	m.nextID++
	profile.ID = m.nextID
	p := *profile
	m.profiles[p.ID] = &p
	return nil
}

func (m *memProfiles) GetProfile(_ context.Context, userID uint) (*model.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, apperr.NotFound("profile")
	}
	cp := *p
	return &cp, nil
}

func (m *memProfiles) ListProfiles(_ context.Context) ([]model.Profile, error) {
	var out []model.Profile
	for id := uint(1); id <= m.nextID; id++ {
		if p, ok := m.profiles[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memProfiles) UpdateProfile(_ context.Context, userID uint, fields map[string]interface{}) error {
	if err := m.updateErr[userID]; err != nil {
		return err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return apperr.NotFound("profile")
	}
	m.updates++
	for k, v := range fields {
		switch k {
		case "weekly_streak_count":
			p.WeeklyStreakCount = v.(int)
		case "weekly_longest_streak":
			p.WeeklyLongestStreak = v.(int)
		case "weekly_last_streak_updated":
			t := v.(time.Time)
			p.WeeklyLastStreakUpdated = &t
		case "weekly_last_streak_week":
			p.WeeklyLastStreakWeek = v.(string)
		case "telegram_chat_id":
			p.TelegramChatID = v.(int64)
		case "telegram_link_code":
			p.TelegramLinkCode = v.(string)
		case "monthly_budget":
			p.MonthlyBudget = v.(decimal.Decimal)
		default:
			return errors.New("unexpected field " + k)
		}
	}
	return nil
}

func (m *memProfiles) FindByLinkCode(_ context.Context, code string) (*model.Profile, error) {
	for _, p := range m.profiles {
		if code != "" && p.TelegramLinkCode == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("profile")
}

func (m *memProfiles) FindByTelegramChat(_ context.Context, chatID int64) (*model.Profile, error) {
	for _, p := range m.profiles {
		if p.TelegramChatID == chatID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("profile")
}

func (m *memProfiles) LinkTelegramChat(_ context.Context, userID uint, chatID int64) error {
	p, ok := m.profiles[userID]
	if !ok {
		return apperr.NotFound("profile")
	}
	for _, other := range m.profiles {
		if other.ID != userID && other.TelegramChatID == chatID {
			other.TelegramChatID = 0
		}
	}
	p.TelegramChatID = chatID
	p.TelegramLinkCode = ""
	m.updates++
	return nil
}

// recordingChannel captures sends and fails for selected recipients. Sends
// take delay, or stall for recipients in stallTo, and give up when ctx ends.
type recordingChannel struct {
	sent    map[string]string
	failTo  map[string]bool
	stallTo map[string]bool
	delay   time.Duration
}

func newRecordingChannel() *recordingChannel {
	return &recordingChannel{sent: make(map[string]string), failTo: make(map[string]bool), stallTo: make(map[string]bool)}
}

func (c *recordingChannel) Name() string { return "test" }

func (c *recordingChannel) Resolve(p model.Profile) (string, bool) {
	return p.Email, p.Email != ""
}

func (c *recordingChannel) Send(ctx context.Context, to, _, body string) error {
	wait := c.delay
	if c.stallTo[to] {
		wait = time.Hour
	}
	if wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return apperr.Upstream("send", ctx.Err())
		}
	}
	if c.failTo[to] {
		return apperr.Upstream("send", errors.New("mailbox unavailable"))
	}
	c.sent[to] = body
	return nil
}

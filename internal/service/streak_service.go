package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"trackpal/internal/aggregate"
	"trackpal/internal/logger"
	"trackpal/internal/model"
)

// StreakReport summarizes one weekly streak run.
type StreakReport struct {
	RunID     string `json:"run_id"`
	Week      string `json:"week"`
	Evaluated int    `json:"evaluated"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

// DefaultUserTimeout bounds the work done for one user inside a batch job.
const DefaultUserTimeout = 30 * time.Second

// StreakService evaluates weekly goal completion for every profile.
type StreakService struct {
	goals       GoalStore
	profiles    ProfileStore
	loc         *time.Location
	userTimeout time.Duration
}

func NewStreakService(goals GoalStore, profiles ProfileStore, loc *time.Location) *StreakService {
	if loc == nil {
		loc = time.UTC
	}
	return &StreakService{goals: goals, profiles: profiles, loc: loc, userTimeout: DefaultUserTimeout}
}

// SetUserTimeout changes the per-user deadline. Non-positive values restore
// the default.
func (s *StreakService) SetUserTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultUserTimeout
	}
	s.userTimeout = d
}

// EvaluateAll updates the streak of every profile for the week containing
// now. A profile already evaluated for that week is skipped. Failures for one
// user are logged and the run moves on.
func (s *StreakService) EvaluateAll(ctx context.Context, now time.Time) (StreakReport, error) {
	return s.evaluateWeek(ctx, aggregate.WeekOf(now.In(s.loc)), now)
}

// EvaluateEndedWeek is EvaluateAll for the week containing the day before
// now. On a Sunday that is the week that just ended.
func (s *StreakService) EvaluateEndedWeek(ctx context.Context, now time.Time) (StreakReport, error) {
	return s.evaluateWeek(ctx, aggregate.WeekOf(now.In(s.loc).AddDate(0, 0, -1)), now)
}

func (s *StreakService) evaluateWeek(ctx context.Context, week aggregate.Week, now time.Time) (StreakReport, error) {
	report := StreakReport{RunID: uuid.NewString(), Week: week.Key()}

	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return report, err
	}

	for _, profile := range profiles {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		userCtx, cancel := context.WithTimeout(ctx, s.userTimeout)
		updated, err := s.evaluate(userCtx, profile, week, now)
		cancel()
		switch {
		case err != nil:
			report.Failed++
			logger.Error("streak evaluation failed", "run", report.RunID, "user", profile.ID, "err", err)
		case !updated:
			report.Skipped++
		default:
			report.Evaluated++
		}
	}

	logger.Info("weekly streak run finished",
		"run", report.RunID,
		"week", report.Week,
		"evaluated", report.Evaluated,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report, nil
}

// Evaluate runs the streak update for a single user.
func (s *StreakService) Evaluate(ctx context.Context, userID uint, now time.Time) (*model.Profile, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.evaluate(ctx, *profile, aggregate.WeekOf(now.In(s.loc)), now); err != nil {
		return nil, err
	}
	return s.profiles.GetProfile(ctx, userID)
}

func (s *StreakService) evaluate(ctx context.Context, profile model.Profile, week aggregate.Week, now time.Time) (bool, error) {
	if profile.WeeklyLastStreakWeek == week.Key() {
		return false, nil
	}

	goals, err := s.goals.ListGoalsForUserInRange(ctx, profile.ID, week.Start, week.End)
	if err != nil {
		return false, err
	}

	prev := aggregate.Streak{Count: profile.WeeklyStreakCount, Longest: profile.WeeklyLongestStreak}
	next, allDone := aggregate.EvaluateStreak(prev, goals)

	fields := map[string]interface{}{
		"weekly_streak_count":        next.Count,
		"weekly_last_streak_updated": now.UTC(),
		"weekly_last_streak_week":    week.Key(),
	}
	if next.Longest != prev.Longest {
		fields["weekly_longest_streak"] = next.Longest
	}
	if err := s.profiles.UpdateProfile(ctx, profile.ID, fields); err != nil {
		return false, err
	}

	logger.Debug("streak evaluated", "user", profile.ID, "goals", len(goals), "all_done", allDone, "count", next.Count)
	return true, nil
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func streakCmd(configPath *string) *cobra.Command {
	var (
		userID    uint
		endedWeek bool
	)
	cmd := &cobra.Command{
		Use:   "streak",
		Short: "Evaluate weekly streaks once",
		Long: `Evaluate weekly streaks once.

Without --user every profile is evaluated. With --ended-week the week
containing yesterday is evaluated, as the scheduled job does.

Examples:
  trackpal streak
  trackpal streak --ended-week
  trackpal streak --user 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if userID > 0 {
				profile, err := a.streaks.Evaluate(cmd.Context(), userID, time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user %d: streak %d, longest %d, week %s\n",
					profile.ID, profile.WeeklyStreakCount, profile.WeeklyLongestStreak, profile.WeeklyLastStreakWeek)
				return nil
			}

			evaluate := a.streaks.EvaluateAll
			if endedWeek {
				evaluate = a.streaks.EvaluateEndedWeek
			}
			report, err := evaluate(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "week %s: evaluated %d, skipped %d, failed %d\n",
				report.Week, report.Evaluated, report.Skipped, report.Failed)
			return nil
		},
	}
	cmd.Flags().UintVarP(&userID, "user", "u", 0, "evaluate a single profile")
	cmd.Flags().BoolVar(&endedWeek, "ended-week", false, "evaluate the week containing yesterday")
	return cmd
}

func remindCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Send due-soon reminders once",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.reminders.SendReminders(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d user(s), sent %d, skipped %d, failed %d\n",
				a.channel.Name(), report.Users, report.Sent, report.Skipped, report.Failed)
			return nil
		},
	}
}

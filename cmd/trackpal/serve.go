package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"trackpal/internal/bot"
	"trackpal/internal/logger"
	"trackpal/internal/service"
	"trackpal/internal/web"
)

func serveCmd(configPath *string) *cobra.Command {
	var (
		addr        string
		noBot       bool
		noScheduler bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the scheduled jobs and the Telegram bot",
		Long: `Run the TrackPal server.

Examples:
  trackpal serve
  trackpal serve --addr :9090 --no-bot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			if addr == "" {
				addr = a.cfg.HTTPAddr
			}
			return runServe(cmd.Context(), a, addr, !noBot, !noScheduler)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to HTTP_ADDR)")
	cmd.Flags().BoolVar(&noBot, "no-bot", false, "do not poll Telegram updates")
	cmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "do not run the in-process cron jobs")
	return cmd
}

func runServe(parent context.Context, a *app, addr string, withBot, withScheduler bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if withScheduler {
		scheduler, err := schedule(ctx, a)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	errCh := make(chan error, 2)
	running := 1

	if withBot && a.botAPI != nil {
		running++
		telegramBot := bot.New(a.botAPI, bot.Services{
			Profiles:  a.profiles,
			Goals:     a.goals,
			Reminders: a.reminders,
		}, a.cfg.Location)
		go func() {
			errCh <- telegramBot.Start(ctx)
		}()
	}

	server := web.NewServer(web.Services{
		Profiles:  a.profiles,
		Goals:     a.goals,
		Streaks:   a.streaks,
		Reminders: a.reminders,
		Finance:   a.finance,
		Routine:   a.routine,
	}, web.Options{JobSecret: a.cfg.JobSecret})
	go func() {
		errCh <- server.Run(ctx, addr)
	}()

	logger.Info("TrackPal started", "addr", addr, "bot", withBot && a.botAPI != nil, "scheduler", withScheduler)

	var firstErr error
	for ; running > 0; running-- {
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) && firstErr == nil {
			firstErr = err
			stop()
		}
	}
	logger.Info("Shutdown complete")
	return firstErr
}

// schedule registers the daily reminder and the weekly streak evaluation.
// Runs stop early only when ctx is cancelled; each user has its own deadline
// inside the services.
func schedule(ctx context.Context, a *app) (*service.SchedulerService, error) {
	scheduler := service.NewSchedulerService(a.cfg.Location)

	if _, err := scheduler.ScheduleDaily(a.cfg.ReminderTime, func() {
		if _, err := a.reminders.SendReminders(ctx, time.Now()); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("reminder job", "err", err)
		}
	}); err != nil {
		return nil, err
	}

	if _, err := scheduler.ScheduleWeekly(a.cfg.StreakWeekday, a.cfg.StreakTime, func() {
		if _, err := a.streaks.EvaluateEndedWeek(ctx, time.Now()); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("streak job", "err", err)
		}
	}); err != nil {
		return nil, err
	}

	logger.Info("jobs scheduled",
		"reminder", a.cfg.ReminderTime,
		"streak", a.cfg.StreakWeekday.String()+" "+a.cfg.StreakTime,
		"timezone", a.cfg.Location.String(),
	)
	return scheduler, nil
}

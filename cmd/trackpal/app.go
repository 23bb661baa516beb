package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"trackpal/internal/bot"
	"trackpal/internal/config"
	"trackpal/internal/logger"
	"trackpal/internal/notify"
	"trackpal/internal/repository"
	"trackpal/internal/service"
)

// app holds everything a command needs, wired from config.
type app struct {
	cfg     config.Config
	db      *gorm.DB
	botAPI  *tgbotapi.BotAPI
	channel notify.Channel

	profiles  *service.ProfileService
	goals     *service.GoalService
	streaks   *service.StreakService
	reminders *service.ReminderService
	finance   *service.FinanceService
	routine   *service.RoutineService
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile}); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	a := &app{cfg: cfg, db: db}

	if cfg.TelegramToken != "" {
		if err := tgbotapi.SetLogger(logger.StandardLog(log.WarnLevel)); err != nil {
			logger.Warn("set telegram logger", "err", err)
		}
		a.botAPI, err = bot.NewAPI(cfg.TelegramToken)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	switch cfg.NotifyChannel {
	case config.ChannelEmail:
		a.channel = notify.NewEmailChannel(cfg.ResendAPIKey, cfg.MailFrom)
	case config.ChannelTelegram:
		a.channel = notify.NewTelegramChannel(a.botAPI)
	default:
		a.channel = notify.LogChannel{}
	}
	logger.Info("notification channel", "channel", a.channel.Name())

	goalRepo := repository.NewGoalRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	a.profiles = service.NewProfileService(profileRepo)
	a.goals = service.NewGoalService(goalRepo, cfg.Location)
	a.streaks = service.NewStreakService(goalRepo, profileRepo, cfg.Location)
	a.reminders = service.NewReminderService(goalRepo, profileRepo, a.channel, cfg.Location)
	a.streaks.SetUserTimeout(cfg.JobUserTimeout)
	a.reminders.SetUserTimeout(cfg.JobUserTimeout)
	a.finance = service.NewFinanceService(
		repository.NewTransactionRepository(db),
		repository.NewBudgetRepository(db),
		profileRepo,
		cfg.Location,
	)
	a.routine = service.NewRoutineService(repository.NewRoutineRepository(db), cfg.Location)

	return a, nil
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

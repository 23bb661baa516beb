package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Notification channels.
const (
	ChannelEmail    = "email"
	ChannelTelegram = "telegram"
	ChannelLog      = "log"
)

// Config keeps runtime settings for the server, the bot and the jobs.
type Config struct {
	DatabaseURL   string
	HTTPAddr      string
	TelegramToken string

	ResendAPIKey  string
	MailFrom      string
	NotifyChannel string

	ReminderTime  string
	StreakWeekday time.Weekday
	StreakTime    string
	Location      *time.Location

	// JobUserTimeout bounds the work for one user in the batch jobs.
	JobUserTimeout time.Duration

	// JobSecret guards the job endpoints when set.
	JobSecret string

	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables with sane defaults.
// When path is set, the YAML file is read first and environment variables
// override it. Keys in the file are the lower-case variable names.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("database_url", "trackpal.db")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("mail_from", "TrackPal <onboarding@resend.dev>")
	v.SetDefault("reminder_time", "08:00")
	v.SetDefault("streak_weekday", "sunday")
	v.SetDefault("streak_time", "00:05")
	v.SetDefault("job_user_timeout", "30s")
	v.SetDefault("timezone", "Local")
	v.SetDefault("log_level", "info")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		DatabaseURL:   strings.TrimSpace(v.GetString("database_url")),
		HTTPAddr:      strings.TrimSpace(v.GetString("http_addr")),
		TelegramToken: strings.TrimSpace(v.GetString("telegram_token")),
		ResendAPIKey:  strings.TrimSpace(v.GetString("resend_api_key")),
		MailFrom:      strings.TrimSpace(v.GetString("mail_from")),
		NotifyChannel: strings.ToLower(strings.TrimSpace(v.GetString("notify_channel"))),
		ReminderTime:  strings.TrimSpace(v.GetString("reminder_time")),
		StreakTime:    strings.TrimSpace(v.GetString("streak_time")),
		JobSecret:     strings.TrimSpace(v.GetString("job_secret")),
		LogLevel:      strings.TrimSpace(v.GetString("log_level")),
		LogFile:       strings.TrimSpace(v.GetString("log_file")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "trackpal.db"
	}

	loc, err := time.LoadLocation(strings.TrimSpace(v.GetString("timezone")))
	if err != nil {
		return cfg, fmt.Errorf("TIMEZONE: %w", err)
	}
	cfg.Location = loc

	weekday, err := parseWeekday(v.GetString("streak_weekday"))
	if err != nil {
		return cfg, fmt.Errorf("STREAK_WEEKDAY: %w", err)
	}
	cfg.StreakWeekday = weekday

	timeout, err := time.ParseDuration(strings.TrimSpace(v.GetString("job_user_timeout")))
	if err != nil || timeout <= 0 {
		return cfg, fmt.Errorf("JOB_USER_TIMEOUT must be a positive duration, got %q", v.GetString("job_user_timeout"))
	}
	cfg.JobUserTimeout = timeout

	if cfg.NotifyChannel == "" {
		cfg.NotifyChannel = defaultChannel(cfg)
	}

	return cfg, cfg.Validate()
}

// Validate checks that the selected features have what they need.
func (c Config) Validate() error {
	for name, value := range map[string]string{"REMINDER_TIME": c.ReminderTime, "STREAK_TIME": c.StreakTime} {
		if _, err := time.Parse("15:04", value); err != nil {
			return fmt.Errorf("%s must be HH:MM, got %q", name, value)
		}
	}
	switch c.NotifyChannel {
	case ChannelEmail:
		if c.ResendAPIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is required for the email channel")
		}
	case ChannelTelegram:
		if c.TelegramToken == "" {
			return fmt.Errorf("TELEGRAM_TOKEN is required for the telegram channel")
		}
	case ChannelLog:
	default:
		return fmt.Errorf("unknown NOTIFY_CHANNEL %q", c.NotifyChannel)
	}
	return nil
}

// defaultChannel prefers email, then Telegram, then the log.
func defaultChannel(c Config) string {
	switch {
	case c.ResendAPIKey != "":
		return ChannelEmail
	case c.TelegramToken != "":
		return ChannelTelegram
	default:
		return ChannelLog
	}
}

func parseWeekday(raw string) (time.Weekday, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if raw == name || raw == name[:3] || raw == strconv.Itoa(int(d)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", raw)
}

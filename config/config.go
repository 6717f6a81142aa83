package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Schedules holds the cron expression for each periodic sweep, evaluated in
// the application timezone (Asia/Amman).
type Schedules struct {
	NotificationDigest  string
	MessageDigest       string
	SymptomReminder     string
	AppointmentReminder string
	StalePendingCleanup string
	AutoComplete        string
}

// Config is the full service configuration, populated from environment
// variables (a .env file is loaded in main when present).
type Config struct {
	Port              string
	FirebaseProjectID string `validate:"required"`

	// Email (SendGrid SMTP relay; the API key is the SMTP password)
	SendGridAPIKey string
	SMTPHost       string
	SMTPPort       int
	EmailFrom      string `validate:"omitempty,email"`

	// Optional Redis for the concurrent-alert guard
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Shared secret for the /jobs endpoint
	JobToken string

	// Business-rule parameters
	AlertCooldown   time.Duration // drastic-vitals dedup window
	DigestMinUnread int           // minimum unread count before a digest email
	StalePendingAge time.Duration // age after which a pending appointment is deleted

	Schedules Schedules
}

// Load reads configuration from environment variables with sensible defaults
// and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              envOr("PORT", "8080"),
		FirebaseProjectID: envOr("FIREBASE_PROJECT_ID", ""),

		SendGridAPIKey: envOr("SENDGRID_API_KEY", ""),
		SMTPHost:       envOr("SMTP_HOST", "smtp.sendgrid.net"),
		SMTPPort:       envInt("SMTP_PORT", 587),
		EmailFrom:      envOr("EMAIL_FROM", "safe3space@gmail.com"),

		RedisAddr:     envOr("REDIS_ADDR", ""),
		RedisPassword: envOr("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),

		JobToken: envOr("JOB_TOKEN", ""),

		AlertCooldown:   time.Duration(envInt("ALERT_COOLDOWN_MINUTES", 60)) * time.Minute,
		DigestMinUnread: envInt("DIGEST_MIN_UNREAD", 1),
		StalePendingAge: time.Duration(envInt("STALE_PENDING_HOURS", 48)) * time.Hour,

		Schedules: Schedules{
			NotificationDigest:  envOr("SCHEDULE_NOTIFICATION_DIGEST", "0 18 * * *"),
			MessageDigest:       envOr("SCHEDULE_MESSAGE_DIGEST", "0 19 * * *"),
			SymptomReminder:     envOr("SCHEDULE_SYMPTOM_REMINDER", "0 9 * * *"),
			AppointmentReminder: envOr("SCHEDULE_APPOINTMENT_REMINDER", "0 8 * * *"),
			StalePendingCleanup: envOr("SCHEDULE_STALE_CLEANUP", "0 3 * * *"),
			AutoComplete:        envOr("SCHEDULE_AUTO_COMPLETE", "30 3 * * *"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.DigestMinUnread < 1 {
		cfg.DigestMinUnread = 1
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

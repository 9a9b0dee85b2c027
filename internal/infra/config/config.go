package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	LogLevel    string
	Environment string
	HTTPAddr    string

	// OwningPackage is the application identifier whose notifications are relayed.
	OwningPackage string

	DatabaseDriver    string // "sqlite" or "postgres"
	DatabaseURL       string
	SettingsKeyPrefix string

	SMTP  SMTPConfig
	Retry RetryConfig

	MailQueueSize int

	RuntimeURL     string
	RuntimeChannel string

	RunGuard           string // "memory" or "database"
	RunGuardLease      time.Duration
	RescheduleOnStart  bool
	CronSpecReschedule string // empty disables the periodic re-arm

	TelegramToken   string // optional, enables the Telegram command surface
	AdminTelegramID int64
	KeyringService  string
}

// SMTPConfig is the fixed outbound mail endpoint and its credentials.
type SMTPConfig struct {
	Host           string
	Port           int
	SenderEmail    string
	SenderPassword string
}

// RetryConfig configures the mail queue's retry strategy.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
	Backoff  float64
}

const (
	defaultSMTPHost       = "smtp.gmail.com"
	defaultSMTPPort       = 587
	defaultOwningPackage  = "com.darahaas.reminderapp"
	defaultRuntimeChannel = "reminder_channel_darahaas"
)

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.HTTPAddr = getEnvDefault("HTTP_ADDR", ":8080")
	cfg.OwningPackage = getEnvDefault("OWNING_PACKAGE", defaultOwningPackage)

	cfg.DatabaseDriver = strings.ToLower(getEnvDefault("DATABASE_DRIVER", "sqlite"))
	if cfg.DatabaseDriver != "sqlite" && cfg.DatabaseDriver != "postgres" {
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
	cfg.DatabaseURL = getEnvDefault("DATABASE_URL", "file:reminder_relay.db")

	// Unset means the Flutter shared-preferences prefix; an explicit empty value disables it.
	if prefix, ok := os.LookupEnv("SETTINGS_KEY_PREFIX"); ok {
		cfg.SettingsKeyPrefix = prefix
	} else {
		cfg.SettingsKeyPrefix = "flutter."
	}

	cfg.SMTP.Host = getEnvDefault("SMTP_HOST", defaultSMTPHost)
	if cfg.SMTP.Port, err = getEnvInt("SMTP_PORT", defaultSMTPPort); err != nil {
		return nil, err
	}
	cfg.SMTP.SenderEmail = os.Getenv("SENDER_EMAIL")
	if cfg.SMTP.SenderEmail == "" {
		return nil, fmt.Errorf("SENDER_EMAIL is not set")
	}
	cfg.SMTP.SenderPassword = os.Getenv("SENDER_PASSWORD") // may come from the keyring instead
	cfg.KeyringService = getEnvDefault("KEYRING_SERVICE", "reminder-relay")

	if cfg.MailQueueSize, err = getEnvInt("MAIL_QUEUE_SIZE", 16); err != nil {
		return nil, err
	}
	if cfg.MailQueueSize < 1 {
		return nil, fmt.Errorf("MAIL_QUEUE_SIZE must be positive, got %d", cfg.MailQueueSize)
	}
	if cfg.Retry.Attempts, err = getEnvInt("MAIL_RETRY_ATTEMPTS", 1); err != nil {
		return nil, err
	}
	if cfg.Retry.Delay, err = getEnvDuration("MAIL_RETRY_DELAY", 2*time.Second); err != nil {
		return nil, err
	}
	backoffStr := getEnvDefault("MAIL_RETRY_BACKOFF", "2")
	cfg.Retry.Backoff, err = strconv.ParseFloat(backoffStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAIL_RETRY_BACKOFF: %w", err)
	}

	cfg.RuntimeURL = strings.TrimRight(os.Getenv("RUNTIME_URL"), "/")
	if cfg.RuntimeURL == "" {
		return nil, fmt.Errorf("RUNTIME_URL is not set")
	}
	cfg.RuntimeChannel = getEnvDefault("RUNTIME_CHANNEL", defaultRuntimeChannel)

	cfg.RunGuard = strings.ToLower(getEnvDefault("RUN_GUARD", "memory"))
	if cfg.RunGuard != "memory" && cfg.RunGuard != "database" {
		return nil, fmt.Errorf("unsupported RUN_GUARD %q", cfg.RunGuard)
	}
	if cfg.RunGuardLease, err = getEnvDuration("RUN_GUARD_LEASE", 10*time.Minute); err != nil {
		return nil, err
	}

	cfg.RescheduleOnStart, err = strconv.ParseBool(getEnvDefault("RESCHEDULE_ON_START", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid RESCHEDULE_ON_START: %w", err)
	}

	if spec, ok := os.LookupEnv("CRON_SPEC_RESCHEDULE"); ok {
		cfg.CronSpecReschedule = spec
	} else {
		cfg.CronSpecReschedule = "0 4 * * *" // Default: 4:00 AM daily
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID"); adminIDStr != "" {
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}
	if cfg.TelegramToken != "" && cfg.AdminTelegramID == 0 {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is required when TELEGRAM_TOKEN is set")
	}

	return cfg, nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

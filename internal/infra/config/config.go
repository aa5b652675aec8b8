package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without zoneinfo

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL     string `env:"DATABASE_URL,notEmpty"`
	TelegramToken   string `env:"TELEGRAM_TOKEN"`
	OwnerTelegramID int64  `env:"OWNER_TELEGRAM_ID"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	Environment     string `env:"ENVIRONMENT" envDefault:"development"`
	Timezone        string `env:"TIMEZONE" envDefault:"America/Chicago"`

	CronSpecProjection string `env:"CRON_SPEC_PROJECTION" envDefault:"0 3 * * *"` // 3 AM daily
	HolidayAPIURL      string `env:"HOLIDAY_API_URL" envDefault:"https://date.nager.at/api/v3"`
	HolidayCountry     string `env:"HOLIDAY_COUNTRY" envDefault:"US"`

	InsertBatchSize        int           `env:"INSERT_BATCH_SIZE" envDefault:"10"`
	RunTimeout             time.Duration `env:"RUN_TIMEOUT" envDefault:"2m"`
	ProjectionDaysOverride int           `env:"PROJECTION_DAYS_OVERRIDE" envDefault:"0"`

	// Location is resolved from Timezone by Load.
	Location *time.Location `env:"-"`
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Environment = strings.ToLower(cfg.Environment)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	if cfg.InsertBatchSize < 1 {
		return nil, fmt.Errorf("INSERT_BATCH_SIZE must be positive, got %d", cfg.InsertBatchSize)
	}
	if cfg.ProjectionDaysOverride < 0 {
		return nil, fmt.Errorf("PROJECTION_DAYS_OVERRIDE must not be negative, got %d", cfg.ProjectionDaysOverride)
	}
	if cfg.TelegramToken != "" && cfg.OwnerTelegramID == 0 {
		return nil, fmt.Errorf("OWNER_TELEGRAM_ID is required when TELEGRAM_TOKEN is set")
	}
	return cfg, nil
}

// TelegramEnabled reports whether the bot should be started.
func (c *AppConfig) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

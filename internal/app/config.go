package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// AppSheet table feed settings. The service is useless without its data
	// source, so app id and access key are mandatory.
	AppSheetRegion    string        `envconfig:"APPSHEET_REGION" default:"www"`
	AppSheetAppID     string        `envconfig:"APPSHEET_APP_ID" required:"true"`
	AppSheetAccessKey string        `envconfig:"APPSHEET_ACCESS_KEY" required:"true"`
	AppSheetTable     string        `envconfig:"APPSHEET_TABLE" default:"giao_kho_vp"`
	AppSheetTimeout   time.Duration `envconfig:"APPSHEET_TIMEOUT" default:"30s"`

	RedisAddr string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"10m"`

	// Optional audit sink; empty disables dispatch audit logging.
	PGDSN string `envconfig:"PG_DSN" default:""`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`

	// Cron spec for the background feed refresh handled by cmd/worker.
	RefreshCron string `envconfig:"REFRESH_CRON" default:"*/10 * * * *"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.AppSheetAppID == "" || cfg.AppSheetAccessKey == "" {
		return nil, errors.New("appsheet app id and access key must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

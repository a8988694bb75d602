package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ykvlv/alert-relay-bot/internal/domain"
	"github.com/ykvlv/alert-relay-bot/internal/store"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken    string `envconfig:"BOT_TOKEN" required:"true"`
	APIEndpoint string `envconfig:"TELEGRAM_API_ENDPOINT"` // e.g. a local Bot API server; empty means api.telegram.org

	StoreDriver string `envconfig:"STORE_DRIVER" default:"sqlite"` // sqlite|postgres|memory
	DBPath      string `envconfig:"DB_PATH" default:"./data/alert-relay.db"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	DefaultTZ string `envconfig:"DEFAULT_TZ" default:"UTC"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"` // json|console
	HTTPAddr  string `envconfig:"HTTP_ADDR" default:":8080"`
	APIKey    string `envconfig:"API_KEY"`

	PushTimeout    time.Duration `envconfig:"PUSH_TIMEOUT" default:"10s"`
	SendRatePerSec int           `envconfig:"SEND_RATE_PER_SEC" default:"25"`
	UpdateTimeout  int           `envconfig:"UPDATE_TIMEOUT" default:"30"` // long-poll seconds
}

// Load reads an optional .env file and then environment variables into Config.
// Variables already set in the environment win over .env.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	tz, err := domain.ValidateTZ(c.DefaultTZ)
	if err != nil {
		return fmt.Errorf("DEFAULT_TZ: %w", err)
	}
	c.DefaultTZ = tz

	switch strings.ToLower(c.StoreDriver) {
	case "sqlite", "sqlite3", "memory":
	case "postgres", "postgresql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for STORE_DRIVER=%s", c.StoreDriver)
		}
	default:
		return fmt.Errorf("STORE_DRIVER: unknown driver %q", c.StoreDriver)
	}

	if c.PushTimeout <= 0 {
		return fmt.Errorf("PUSH_TIMEOUT must be positive")
	}
	if c.SendRatePerSec <= 0 {
		return fmt.Errorf("SEND_RATE_PER_SEC must be positive")
	}
	return nil
}

// Store returns the storage driver settings.
func (c Config) Store() store.Config {
	return store.Config{Driver: c.StoreDriver, Path: c.DBPath, DSN: c.DatabaseURL}
}

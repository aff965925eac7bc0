package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the channel service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"channel-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"CHANNEL_API_PORT" envDefault:"8290"`
	LogLevel        string        `env:"CHANNEL_LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database (required, no default)
	DatabaseURL string `env:"DB_POSTGRESQL_DSN,notEmpty"`

	// Database Connection Pool
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Pipeline
	ProcessBatchSize  int           `env:"PROCESS_BATCH_SIZE" envDefault:"10"`
	DispatchBatchSize int           `env:"DISPATCH_BATCH_SIZE" envDefault:"25"`
	PollInterval      time.Duration `env:"PIPELINE_POLL_INTERVAL" envDefault:"5s"`
	RunTimeout        time.Duration `env:"PIPELINE_RUN_TIMEOUT" envDefault:"60s"`
	SchedulerEnabled  bool          `env:"PIPELINE_SCHEDULER_ENABLED" envDefault:"true"`

	// Reply generation
	LLMAPIURL  string        `env:"LLM_API_URL" envDefault:"http://localhost:8280"`
	LLMAPIKey  string        `env:"LLM_API_KEY"`
	LLMTimeout time.Duration `env:"LLM_TIMEOUT" envDefault:"45s"`

	// Channel transport
	TelegramAPIURL   string        `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
	TransportTimeout time.Duration `env:"TRANSPORT_TIMEOUT" envDefault:"15s"`

	// Secrets
	MasterKey   string `env:"CREDENTIAL_MASTER_KEY,notEmpty"`
	AdminSecret string `env:"ADMIN_API_SECRET,notEmpty"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.MasterKey = strings.TrimSpace(cfg.MasterKey)
	cfg.AdminSecret = strings.TrimSpace(cfg.AdminSecret)
	cfg.TelegramAPIURL = strings.TrimRight(strings.TrimSpace(cfg.TelegramAPIURL), "/")
	if cfg.ProcessBatchSize <= 0 {
		cfg.ProcessBatchSize = 10
	}
	if cfg.DispatchBatchSize <= 0 {
		cfg.DispatchBatchSize = 25
	}
	if len(cfg.AdminSecret) < 16 {
		return nil, fmt.Errorf("ADMIN_API_SECRET must be at least 16 characters")
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

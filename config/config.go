package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

/* Config is read once in main and passed down explicitly.
 * Values come from an optional .env file (toml) and are overridden by environment variables.
 */

type Config struct {
	Port        string `mapstructure:"PORT"`
	ServiceName string `mapstructure:"SERVICE_NAME"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	RateLimitEnabled          bool   `mapstructure:"RATE_LIMIT_ENABLED"`
	RateLimitBackend          string `mapstructure:"RATE_LIMIT_BACKEND"`
	RateLimitRemoteURL        string `mapstructure:"RATE_LIMIT_REMOTE_URL"`
	RateLimitAPILimit         int    `mapstructure:"RATE_LIMIT_API_LIMIT"`
	RateLimitAPIWindowSeconds int    `mapstructure:"RATE_LIMIT_API_WINDOW_SECONDS"`
	RateLimitPolicyFile       string `mapstructure:"RATE_LIMIT_POLICY_FILE"`

	WebhookTimeoutSeconds  int `mapstructure:"WEBHOOK_TIMEOUT_SECONDS"`
	WebhookMaxRedeliveries int `mapstructure:"WEBHOOK_MAX_REDELIVERIES"`

	DunningScheduleFile         string `mapstructure:"DUNNING_SCHEDULE_FILE"`
	DunningScanIntervalMinutes  int    `mapstructure:"DUNNING_SCAN_INTERVAL_MINUTES"`
	OTelExporterOTLPEndpoint    string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ShutdownTimeoutSeconds      int    `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
	StartupReadinessTimeoutSecs int    `mapstructure:"STARTUP_READINESS_TIMEOUT_SECONDS"`
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendRemote = "remote"
)

var defaults = map[string]any{
	"PORT":                              "8080",
	"SERVICE_NAME":                      "go2-edge",
	"LOG_LEVEL":                         "info",
	"DATABASE_URL":                      "",
	"REDIS_ADDR":                        "localhost:6379",
	"REDIS_PASSWORD":                    "",
	"REDIS_DB":                          0,
	"RATE_LIMIT_ENABLED":                true,
	"RATE_LIMIT_BACKEND":                BackendMemory,
	"RATE_LIMIT_REMOTE_URL":             "",
	"RATE_LIMIT_API_LIMIT":              100,
	"RATE_LIMIT_API_WINDOW_SECONDS":     60,
	"RATE_LIMIT_POLICY_FILE":            "",
	"WEBHOOK_TIMEOUT_SECONDS":           10,
	"WEBHOOK_MAX_REDELIVERIES":          3,
	"DUNNING_SCHEDULE_FILE":             "",
	"DUNNING_SCAN_INTERVAL_MINUTES":     60,
	"OTEL_EXPORTER_OTLP_ENDPOINT":       "",
	"SHUTDOWN_TIMEOUT_SECONDS":          30,
	"STARTUP_READINESS_TIMEOUT_SECONDS": 30,
}

// GetConfig loads .env from the working directory (if present) and the environment
func GetConfig() (*Config, error) {
	return Load(".")
}

// Load reads configuration looking for .env in the given directories
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("toml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	var config Config
	err = v.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	config.RateLimitBackend = strings.ToLower(strings.TrimSpace(config.RateLimitBackend))
	return &config, nil
}

// Validate checks cross-field requirements
func (c *Config) Validate() error {
	switch c.RateLimitBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis rate limit backend")
		}
	case BackendRemote:
		if c.RateLimitRemoteURL == "" {
			return fmt.Errorf("RATE_LIMIT_REMOTE_URL is required for the remote rate limit backend")
		}
	default:
		return fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", c.RateLimitBackend)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.RateLimitAPILimit < 1 {
		return fmt.Errorf("RATE_LIMIT_API_LIMIT must be at least 1")
	}
	if c.RateLimitAPIWindowSeconds < 1 {
		return fmt.Errorf("RATE_LIMIT_API_WINDOW_SECONDS must be at least 1")
	}
	return nil
}

// GetAPIWindow returns the default API rate limit window
func (c *Config) GetAPIWindow() time.Duration {
	return time.Duration(c.RateLimitAPIWindowSeconds) * time.Second
}

// GetWebhookTimeout returns the per-delivery timeout (default 10s)
func (c *Config) GetWebhookTimeout() time.Duration {
	if c.WebhookTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.WebhookTimeoutSeconds) * time.Second
}

// GetDunningScanInterval returns how often the dunning scan job runs (default 1h)
func (c *Config) GetDunningScanInterval() time.Duration {
	if c.DunningScanIntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.DunningScanIntervalMinutes) * time.Minute
}

// GetShutdownTimeout returns the graceful shutdown budget (default 30s)
func (c *Config) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// GetStartupReadinessTimeout bounds how long startup waits for Postgres and Redis
func (c *Config) GetStartupReadinessTimeout() time.Duration {
	if c.StartupReadinessTimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.StartupReadinessTimeoutSecs) * time.Second
}

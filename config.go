package main

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// LookupFunc abstracts environment lookup so configuration loading can be
// tested without touching the process environment.
type LookupFunc func(string) (string, bool)

// DatabaseConfig holds the connection parameters for the CRM database.
type DatabaseConfig struct {
	Host     string
	Name     string
	User     string
	Password string
	Port     string
	SSLMode  string
}

// DSN renders the config as a PostgreSQL connection URL.
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.Name,
	}
	if c.SSLMode != "" {
		u.RawQuery = "sslmode=" + c.SSLMode
	}
	return u.String()
}

// Config carries everything the processor and its boundaries need. It is
// constructed once at startup and passed explicitly; core logic performs no
// ambient environment lookups.
type Config struct {
	Database        DatabaseConfig
	AnthropicAPIKey string
	Model           string
	MaxRetries      int
	RetryDelay      time.Duration
	LogLevel        slog.Level
	LogFile         string
}

// LoadConfigFromEnv reads configuration from the process environment.
func LoadConfigFromEnv() (Config, error) {
	return LoadConfig(os.LookupEnv)
}

// LoadConfig reads configuration through the given lookup function, applying
// defaults for everything but the credentials. Missing credentials are not an
// error here; they surface as a ConfigError when the processor validates its
// preconditions.
func LoadConfig(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	cfg := Config{
		Database: DatabaseConfig{
			Port:    "5432",
			SSLMode: "disable",
		},
		Model:      defaultModel,
		MaxRetries: defaultMaxRetries,
		RetryDelay: defaultRetryDelay,
		LogLevel:   slog.LevelInfo,
		LogFile:    "crm_insights.log",
	}

	applyString(lookup, "DB_HOST", &cfg.Database.Host)
	applyString(lookup, "DB_NAME", &cfg.Database.Name)
	applyString(lookup, "DB_USER", &cfg.Database.User)
	applyString(lookup, "DB_PASSWORD", &cfg.Database.Password)
	applyString(lookup, "DB_PORT", &cfg.Database.Port)
	applyString(lookup, "DB_SSLMODE", &cfg.Database.SSLMode)
	applyString(lookup, "ANTHROPIC_API_KEY", &cfg.AnthropicAPIKey)
	applyString(lookup, "CRM_MODEL", &cfg.Model)
	applyString(lookup, "CRM_LOG_FILE", &cfg.LogFile)

	if err := applyInt(lookup, "CRM_MAX_RETRIES", &cfg.MaxRetries); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "CRM_RETRY_DELAY", &cfg.RetryDelay); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "CRM_LOG_LEVEL", &cfg.LogLevel); err != nil {
		return Config{}, err
	}

	// Cap retries to avoid excessive generation-service calls
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	} else if cfg.MaxRetries > 5 {
		cfg.MaxRetries = 5
	}

	return cfg, nil
}

// Validate checks the preconditions for running a query: all database
// credentials and the generation-service credential must be present. A
// violation is fatal and never retried.
func (c Config) Validate() error {
	var missing []string
	if c.Database.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if c.Database.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	if c.Database.User == "" {
		missing = append(missing, "DB_USER")
	}
	if c.Database.Password == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if len(missing) > 0 {
		return &ConfigError{Reason: "database configuration is incomplete: missing " + strings.Join(missing, ", ")}
	}
	if c.AnthropicAPIKey == "" {
		return &ConfigError{Reason: "ANTHROPIC_API_KEY is not set"}
	}
	return nil
}

func applyString(lookup LookupFunc, key string, dst *string) {
	if raw, ok := lookup(key); ok {
		*dst = strings.TrimSpace(raw)
	}
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}

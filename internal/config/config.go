// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Sources       SourcesConfig       `yaml:"sources"`
	Collection    CollectionConfig    `yaml:"collection"`
	Triggers      TriggersConfig      `yaml:"triggers"`
	Scoring       ScoringConfig       `yaml:"scoring"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// SourcesConfig holds the configured marketplace adapters.
type SourcesConfig struct {
	Marketplaces []MarketplaceConfig `yaml:"marketplaces"`
}

// MarketplaceConfig defines one JSON-API marketplace adapter.
type MarketplaceConfig struct {
	Name      string          `yaml:"name"`
	BaseURL   string          `yaml:"base_url"`
	APIKey    string          `yaml:"api_key"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines per-source API rate limiting settings.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// CollectionConfig tunes the market data orchestrator.
type CollectionConfig struct {
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	MaxConcurrent  int           `yaml:"max_concurrent"`
	RetryAttempts  int           `yaml:"retry_attempts"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`
	SearchTimeout  time.Duration `yaml:"search_timeout"`
}

// TriggersConfig tunes the external trigger impact scorer.
type TriggersConfig struct {
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	SocialDisabled bool          `yaml:"social_disabled"`
	Feeds          []FeedConfig  `yaml:"feeds"`
}

// FeedConfig defines one category event feed endpoint.
type FeedConfig struct {
	Category string `yaml:"category"` // entertainment, news, social, historical
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
}

// ScoringConfig tunes the recommendation engine.
type ScoringConfig struct {
	Validity time.Duration `yaml:"validity"`
}

// ScheduleConfig defines the cron spec for re-advising watched items.
type ScheduleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Interval string `yaml:"interval"` // cron expression
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applySourcesDefaults(&cfg.Sources)
	applyCollectionDefaults(&cfg.Collection)
	applyTriggersDefaults(&cfg.Triggers)
	applyScoringDefaults(&cfg.Scoring)
	applyScheduleDefaults(&cfg.Schedule)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applySourcesDefaults(s *SourcesConfig) {
	for i := range s.Marketplaces {
		applyRateLimitDefaults(&s.Marketplaces[i].RateLimit)
	}
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 5.0
	}
	if r.Burst == 0 {
		r.Burst = 10
	}
}

func applyCollectionDefaults(c *CollectionConfig) {
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 5
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 3
	}
	if c.RetryBaseDelay == 0 {
		c.RetryBaseDelay = 500 * time.Millisecond
	}
	if c.SearchTimeout == 0 {
		c.SearchTimeout = 30 * time.Second
	}
}

func applyTriggersDefaults(t *TriggersConfig) {
	if t.CacheTTL == 0 {
		t.CacheTTL = time.Hour
	}
}

func applyScoringDefaults(s *ScoringConfig) {
	if s.Validity == 0 {
		s.Validity = 6 * time.Hour
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.Interval == "" {
		s.Interval = "0 */6 * * *"
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if cfg.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if cfg.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}

	if len(cfg.Sources.Marketplaces) == 0 {
		errs = append(errs, fmt.Errorf("sources.marketplaces must list at least one adapter"))
	}
	seen := make(map[string]bool)
	for i, m := range cfg.Sources.Marketplaces {
		if m.Name == "" {
			errs = append(errs, fmt.Errorf("sources.marketplaces[%d].name is required", i))
		}
		if m.BaseURL == "" {
			errs = append(errs, fmt.Errorf("sources.marketplaces[%d].base_url is required", i))
		}
		if m.Name != "" && seen[m.Name] {
			errs = append(errs, fmt.Errorf("sources.marketplaces[%d].name %q is duplicated", i, m.Name))
		}
		seen[m.Name] = true
	}

	feedSeen := make(map[string]bool)
	for i, f := range cfg.Triggers.Feeds {
		switch f.Category {
		case "entertainment", "news", "social", "historical":
		default:
			errs = append(errs, fmt.Errorf(
				"triggers.feeds[%d].category must be one of: entertainment, news, social, historical (got %q)",
				i, f.Category,
			))
		}
		if f.BaseURL == "" {
			errs = append(errs, fmt.Errorf("triggers.feeds[%d].base_url is required", i))
		}
		if f.Category != "" && feedSeen[f.Category] {
			errs = append(errs, fmt.Errorf("triggers.feeds[%d].category %q is duplicated", i, f.Category))
		}
		feedSeen[f.Category] = true
	}

	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(
			errs,
			fmt.Errorf("notifications.discord.webhook_url is required when discord is enabled"),
		)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(
			errs,
			fmt.Errorf("logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level),
		)
	}

	return errors.Join(errs...)
}

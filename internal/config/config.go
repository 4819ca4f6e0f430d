package config

// Package config handles configuration loading for researchdesk.
// It supports YAML config files with environment variable overrides.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  yaml:"server"`
	Quotes  QuotesConfig  `mapstructure:"quotes"  yaml:"quotes"`
	News    NewsConfig    `mapstructure:"news"    yaml:"news"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig holds HTTP API server settings.
type ServerConfig struct {
	Host            string   `mapstructure:"host"              yaml:"host"`
	Port            int      `mapstructure:"port"              yaml:"port"`
	CORSOrigins     []string `mapstructure:"cors_origins"      yaml:"cors_origins"`
	ReadTimeoutSec  int      `mapstructure:"read_timeout_sec"  yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `mapstructure:"write_timeout_sec" yaml:"write_timeout_sec"`
	IdleTimeoutSec  int      `mapstructure:"idle_timeout_sec"  yaml:"idle_timeout_sec"`
}

// QuotesConfig holds quote provider settings.
type QuotesConfig struct {
	BaseURL         string  `mapstructure:"base_url"         yaml:"base_url"`
	FeedURL         string  `mapstructure:"feed_url"         yaml:"feed_url"`
	TimeoutSec      int     `mapstructure:"timeout_sec"      yaml:"timeout_sec"`
	RateLimit       float64 `mapstructure:"rate_limit"       yaml:"rate_limit"` // requests per second
	BatchSize       int     `mapstructure:"batch_size"       yaml:"batch_size"`
	QuoteTTL        int     `mapstructure:"quote_ttl"        yaml:"quote_ttl"`    // seconds
	UniverseTTL     int     `mapstructure:"universe_ttl"     yaml:"universe_ttl"` // seconds
	FallbackTTL     int     `mapstructure:"fallback_ttl"     yaml:"fallback_ttl"` // seconds
	RefreshSchedule string  `mapstructure:"refresh_schedule" yaml:"refresh_schedule"`
}

// NewsConfig holds headline feed settings.
type NewsConfig struct {
	CacheTTL int `mapstructure:"cache_ttl" yaml:"cache_ttl"` // seconds
	Limit    int `mapstructure:"limit"     yaml:"limit"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // "badger" or "memory"
	Path   string `mapstructure:"path"   yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text", "json" or "logfmt"
}

// Addr returns the host:port the API server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Timeout returns the per-request provider timeout.
func (q QuotesConfig) Timeout() time.Duration {
	return time.Duration(q.TimeoutSec) * time.Second
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.researchdesk/config.yaml (home directory)
//  3. /etc/researchdesk/config.yaml (system)
//
// Environment variables override config file values.
// Format: RESEARCHDESK_<SECTION>_<KEY>, e.g., RESEARCHDESK_SERVER_PORT
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".researchdesk"))
	v.AddConfigPath("/etc/researchdesk")

	v.SetEnvPrefix("RESEARCHDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; defaults + env vars are enough.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	cfg.Storage.Path = expandHome(cfg.Storage.Path)

	return &cfg, cfg.Validate()
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("RESEARCHDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	return &cfg, cfg.Validate()
}

// Validate rejects values the rest of the program cannot work with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "badger", "memory":
	default:
		return fmt.Errorf("invalid storage.driver %q (want badger or memory)", c.Storage.Driver)
	}
	if c.Quotes.BatchSize <= 0 {
		return fmt.Errorf("quotes.batch_size must be positive, got %d", c.Quotes.BatchSize)
	}
	if c.Quotes.RateLimit <= 0 {
		return fmt.Errorf("quotes.rate_limit must be positive, got %v", c.Quotes.RateLimit)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.read_timeout_sec", 15)
	v.SetDefault("server.write_timeout_sec", 60)
	v.SetDefault("server.idle_timeout_sec", 120)

	// Quote provider defaults
	v.SetDefault("quotes.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("quotes.feed_url", "https://feeds.finance.yahoo.com/rss/2.0/headline")
	v.SetDefault("quotes.timeout_sec", 15)
	v.SetDefault("quotes.rate_limit", 5.0)
	v.SetDefault("quotes.batch_size", 200)
	v.SetDefault("quotes.quote_ttl", 60)
	v.SetDefault("quotes.universe_ttl", 300) // 5 minutes
	v.SetDefault("quotes.fallback_ttl", 30)
	v.SetDefault("quotes.refresh_schedule", "@every 5m")

	// News defaults
	v.SetDefault("news.cache_ttl", 600)
	v.SetDefault("news.limit", 20)

	// Storage defaults
	v.SetDefault("storage.driver", "badger")
	v.SetDefault("storage.path", "~/.researchdesk/data")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv reads values whose env names do not follow the
// section_key pattern.
func overrideFromEnv(cfg *Config) {
	if dir := os.Getenv("RESEARCHDESK_DATA_DIR"); dir != "" {
		cfg.Storage.Path = dir
	}
	if lvl := os.Getenv("RESEARCHDESK_LOG_LEVEL"); lvl != "" {
		cfg.Logging.Level = lvl
	}
}

func expandHome(p string) string {
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	os.Unsetenv("RESEARCHDESK_DATA_DIR")
	os.Unsetenv("RESEARCHDESK_LOG_LEVEL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host: got %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port: got %d, want 8080", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("Server.CORSOrigins: got %v", cfg.Server.CORSOrigins)
	}

	if cfg.Quotes.BaseURL != "https://query1.finance.yahoo.com" {
		t.Errorf("Quotes.BaseURL: got %q", cfg.Quotes.BaseURL)
	}
	if cfg.Quotes.BatchSize != 200 {
		t.Errorf("Quotes.BatchSize: got %d, want 200", cfg.Quotes.BatchSize)
	}
	if cfg.Quotes.UniverseTTL != 300 {
		t.Errorf("Quotes.UniverseTTL: got %d, want 300", cfg.Quotes.UniverseTTL)
	}
	if cfg.Quotes.RateLimit != 5.0 {
		t.Errorf("Quotes.RateLimit: got %f, want 5.0", cfg.Quotes.RateLimit)
	}
	if cfg.Quotes.RefreshSchedule != "@every 5m" {
		t.Errorf("Quotes.RefreshSchedule: got %q", cfg.Quotes.RefreshSchedule)
	}
	if cfg.Quotes.Timeout() != 15*time.Second {
		t.Errorf("Quotes.Timeout(): got %v, want 15s", cfg.Quotes.Timeout())
	}

	if cfg.News.Limit != 20 {
		t.Errorf("News.Limit: got %d, want 20", cfg.News.Limit)
	}

	if cfg.Storage.Driver != "badger" {
		t.Errorf("Storage.Driver: got %q, want badger", cfg.Storage.Driver)
	}
	if strings.HasPrefix(cfg.Storage.Path, "~") {
		t.Errorf("Storage.Path should be expanded, got %q", cfg.Storage.Path)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "text")
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yaml := `
server:
  port: 9090
quotes:
  batch_size: 50
  universe_ttl: 120
  refresh_schedule: "*/10 * * * *"
storage:
  driver: memory
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	os.Unsetenv("RESEARCHDESK_DATA_DIR")
	os.Unsetenv("RESEARCHDESK_LOG_LEVEL")

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port: got %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Addr() != "0.0.0.0:9090" {
		t.Errorf("Server.Addr(): got %q", cfg.Server.Addr())
	}
	if cfg.Quotes.BatchSize != 50 {
		t.Errorf("Quotes.BatchSize: got %d, want 50", cfg.Quotes.BatchSize)
	}
	if cfg.Quotes.UniverseTTL != 120 {
		t.Errorf("Quotes.UniverseTTL: got %d, want 120", cfg.Quotes.UniverseTTL)
	}
	if cfg.Quotes.RefreshSchedule != "*/10 * * * *" {
		t.Errorf("Quotes.RefreshSchedule: got %q", cfg.Quotes.RefreshSchedule)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("Storage.Driver: got %q, want memory", cfg.Storage.Driver)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "json")
	}
	// untouched keys keep their defaults
	if cfg.Quotes.QuoteTTL != 60 {
		t.Errorf("Quotes.QuoteTTL: got %d, want 60", cfg.Quotes.QuoteTTL)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

func TestLoadFromFileInvalidDriver(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("storage:\n  driver: sqlite\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFromFile(cfgPath); err == nil {
		t.Error("expected error for unknown storage driver")
	}
}

// ── overrideFromEnv ──

func TestOverrideFromEnv(t *testing.T) {
	cfg := &Config{}

	t.Setenv("RESEARCHDESK_DATA_DIR", "/tmp/rd-data")
	t.Setenv("RESEARCHDESK_LOG_LEVEL", "warn")

	overrideFromEnv(cfg)

	if cfg.Storage.Path != "/tmp/rd-data" {
		t.Errorf("Storage.Path: got %q", cfg.Storage.Path)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level: got %q", cfg.Logging.Level)
	}
}

func TestOverrideFromEnvNoEnvSet(t *testing.T) {
	os.Unsetenv("RESEARCHDESK_DATA_DIR")
	os.Unsetenv("RESEARCHDESK_LOG_LEVEL")

	cfg := &Config{Storage: StorageConfig{Path: "from-config"}}
	overrideFromEnv(cfg)

	if cfg.Storage.Path != "from-config" {
		t.Errorf("Storage.Path should stay as 'from-config' when env is unset, got %q", cfg.Storage.Path)
	}
}

// ── Validate ──

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:  ServerConfig{Port: 8080},
			Quotes:  QuotesConfig{BatchSize: 200, RateLimit: 5},
			Storage: StorageConfig{Driver: "memory"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad driver", func(c *Config) { c.Storage.Driver = "" }, true},
		{"zero batch", func(c *Config) { c.Quotes.BatchSize = 0 }, true},
		{"zero rate", func(c *Config) { c.Quotes.RateLimit = 0 }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := homeDir()
	if got := expandHome("~/x"); got != filepath.Join(home, "x") {
		t.Errorf("expandHome(~/x) = %q", got)
	}
	if got := expandHome("/abs"); got != "/abs" {
		t.Errorf("expandHome(/abs) = %q", got)
	}
}

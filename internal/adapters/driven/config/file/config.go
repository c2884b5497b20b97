// Package file loads clubby's TOML configuration. Configuration is
// read once at startup and treated as read-only thereafter; nothing in
// the pipeline mutates it at runtime.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/pavilion-labs/clubby/internal/core/domain"
)

// Config is the full application configuration.
type Config struct {
	// Privacy selects public or private output mode. Private strips
	// personally-identifying fields from answers.
	Privacy string `toml:"privacy"`

	// DataDir is the root directory for persistent storage tiers.
	DataDir string `toml:"data_dir"`

	// CacheTTLSeconds is the response cache entry lifetime.
	CacheTTLSeconds int `toml:"cache_ttl_seconds"`

	// FreshnessDays is the window within which indexed fixture data is
	// considered current; older results trigger the upstream fallback.
	FreshnessDays int `toml:"freshness_days"`

	// Teams is the known-team alias table.
	Teams []domain.Team `toml:"teams"`

	Upstream  UpstreamConfig  `toml:"upstream"`
	LLM       ServiceConfig   `toml:"llm"`
	Embedding ServiceConfig   `toml:"embedding"`
}

// UpstreamConfig configures the live sports-data API client.
type UpstreamConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Tenant  string `toml:"tenant"`
}

// ServiceConfig configures an OpenAI-compatible service.
type ServiceConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// Defaults applied when the file omits a value.
const (
	DefaultCacheTTLSeconds = 60
	DefaultFreshnessDays   = 7
)

// Load reads the configuration from path. If path is empty it defaults
// to ~/.clubby/config.toml; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".clubby", "config.toml")
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyDefaults(filepath.Dir(path))
	return cfg, nil
}

func (c *Config) applyDefaults(configDir string) {
	if c.Privacy == "" {
		c.Privacy = string(domain.PrivacyPrivate)
	}
	if c.DataDir == "" {
		c.DataDir = filepath.Join(configDir, "data")
	}
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = DefaultCacheTTLSeconds
	}
	if c.FreshnessDays <= 0 {
		c.FreshnessDays = DefaultFreshnessDays
	}
}

// PrivacyMode returns the parsed privacy mode.
func (c *Config) PrivacyMode() domain.PrivacyMode {
	return domain.ParsePrivacyMode(c.Privacy)
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// FreshnessWindow returns the staleness window as a duration.
func (c *Config) FreshnessWindow() time.Duration {
	return time.Duration(c.FreshnessDays) * 24 * time.Hour
}

// Package config loads product-trends settings from YAML with defaults and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/daniel-butler/product-trends/pkg/domain"
)

// Tagger backends.
const (
	BackendHTTP  = "http"
	BackendProse = "prose"
)

// Config holds all application configuration.
type Config struct {
	DBPath       string                  `yaml:"db_path"`
	LogLevel     string                  `yaml:"log_level"`
	TopN         int                     `yaml:"top_n"`
	POSCacheSize int                     `yaml:"pos_cache_size"`
	Schedule     string                  `yaml:"schedule"`
	Timezone     string                  `yaml:"timezone"`
	Tagger       TaggerConfig            `yaml:"tagger"`
	Fetch        FetchConfig             `yaml:"fetch"`
	Domains      map[string]DomainConfig `yaml:"domains"`
}

// TaggerConfig selects and configures the token-classification oracle.
type TaggerConfig struct {
	Backend     string `yaml:"backend"`
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	WordSpacing bool   `yaml:"word_spacing"`
}

// FetchConfig configures subreddit feed downloads.
type FetchConfig struct {
	UserAgent   string `yaml:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// DomainConfig adjusts one built-in domain.
type DomainConfig struct {
	ExtraGenericBrands []string `yaml:"extra_generic_brands"`
	ExtraNoisyTerms    []string `yaml:"extra_noisy_terms"`
	TopN               int      `yaml:"top_n"`
	Feeds              []string `yaml:"feeds"`
}

// Path returns the config file to read: flagValue when set, then
// $PRODUCT_TRENDS_CONFIG, then ~/.product-trends/config.yaml.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if path := os.Getenv("PRODUCT_TRENDS_CONFIG"); path != "" {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".product-trends", "config.yaml")
}

// Default returns the configuration used when no file exists.
func Default() (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnvironmentOverrides(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Load reads configuration from a YAML file and applies defaults. A
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default()
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	applyDefaults(cfg)
	applyEnvironmentOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DBPath == "" {
		home, _ := os.UserHomeDir()
		cfg.DBPath = filepath.Join(home, ".product-trends", "trends.db")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.TopN == 0 {
		cfg.TopN = domain.DefaultTopN
	}
	if cfg.POSCacheSize == 0 {
		cfg.POSCacheSize = 4096
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 6h"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.Tagger.TimeoutSecs == 0 {
		cfg.Tagger.TimeoutSecs = 30
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = "product-trends/1.0"
	}
	if cfg.Fetch.TimeoutSecs == 0 {
		cfg.Fetch.TimeoutSecs = 30
	}
}

func applyEnvironmentOverrides(cfg *Config) {
	if dbPath := os.Getenv("PRODUCT_TRENDS_DB"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if url := os.Getenv("TAGGER_URL"); url != "" {
		cfg.Tagger.URL = url
	}
	if key := os.Getenv("TAGGER_API_KEY"); key != "" {
		cfg.Tagger.APIKey = key
	}
	// backend is resolved after the env so TAGGER_URL alone switches to HTTP
	if cfg.Tagger.Backend == "" {
		if cfg.Tagger.URL != "" {
			cfg.Tagger.Backend = BackendHTTP
		} else {
			cfg.Tagger.Backend = BackendProse
		}
	}
}

func validate(cfg *Config) error {
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}
	switch cfg.Tagger.Backend {
	case BackendProse:
	case BackendHTTP:
		if cfg.Tagger.URL == "" {
			return fmt.Errorf("tagger.url is required for the %s backend", BackendHTTP)
		}
	default:
		return fmt.Errorf("unknown tagger backend %q", cfg.Tagger.Backend)
	}
	if cfg.Tagger.TimeoutSecs < 0 {
		return fmt.Errorf("tagger.timeout_secs must be positive, got %d", cfg.Tagger.TimeoutSecs)
	}
	if cfg.Fetch.TimeoutSecs < 0 {
		return fmt.Errorf("fetch.timeout_secs must be positive, got %d", cfg.Fetch.TimeoutSecs)
	}
	if cfg.TopN < 0 {
		return fmt.Errorf("top_n must be positive, got %d", cfg.TopN)
	}
	if cfg.POSCacheSize < 0 {
		return fmt.Errorf("pos_cache_size must be positive, got %d", cfg.POSCacheSize)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	for name, dc := range cfg.Domains {
		if !domain.Known(name) {
			return fmt.Errorf("domains.%s: %w", name, domain.ErrUnknownDomain)
		}
		if dc.TopN < 0 {
			return fmt.Errorf("domains.%s.top_n must be positive, got %d", name, dc.TopN)
		}
	}
	return nil
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log_level %q", s)
}

// TaggerTimeout is the per-call bound on oracle requests.
func (c *Config) TaggerTimeout() time.Duration {
	return time.Duration(c.Tagger.TimeoutSecs) * time.Second
}

// FetchTimeout is the HTTP timeout for feed downloads.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSecs) * time.Second
}

// Overrides converts the per-domain settings for domain.NewRegistry. Every
// built-in domain gets the global top_n unless it sets its own.
func (c *Config) Overrides() map[string]domain.Overrides {
	out := make(map[string]domain.Overrides, len(domain.Names()))
	for _, name := range domain.Names() {
		dc := c.Domains[name]
		topN := dc.TopN
		if topN == 0 {
			topN = c.TopN
		}
		out[name] = domain.Overrides{
			ExtraGenericBrands: dc.ExtraGenericBrands,
			ExtraNoisyTerms:    dc.ExtraNoisyTerms,
			TopN:               topN,
			Subreddits:         dc.Feeds,
		}
	}
	return out
}

// Package config loads runtime configuration from a YAML file with
// environment variable overrides, prefixed SCOUT_.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration for a discovery run.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Reddit  RedditConfig  `mapstructure:"reddit"`
	Search  SearchConfig  `mapstructure:"search"`
	Serp    SerpConfig    `mapstructure:"serp"`
	Storage StorageConfig `mapstructure:"storage"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type AppConfig struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
	Debug    bool   `mapstructure:"debug"`
}

type RedditConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	UserAgent    string `mapstructure:"user_agent"`
}

type SearchConfig struct {
	ChunkSize   int           `mapstructure:"chunk_size"`
	TargetLeads int           `mapstructure:"target_leads"`
	QueryLimit  int           `mapstructure:"query_limit"`
	QueryLevel  int           `mapstructure:"query_level"`
	ChunkDelay  time.Duration `mapstructure:"chunk_delay"`
	// Blacklist lists communities never searched or retained.
	Blacklist []string `mapstructure:"blacklist"`
}

type SerpConfig struct {
	// Enabled turns on organic-ranking checks during enrichment.
	Enabled     bool   `mapstructure:"enabled"`
	Fingerprint string `mapstructure:"fingerprint"`
}

type StorageConfig struct {
	// Backend selects the persistence layer: sqlite, postgres, json, or none.
	Backend string `mapstructure:"backend"`
	DSN     string `mapstructure:"dsn"`
	// Dir is the output directory for the json backend.
	Dir string `mapstructure:"dir"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Load reads configuration from path (optional) and the environment.
// Environment variables use the SCOUT_ prefix with underscores, so
// SCOUT_REDDIT_CLIENT_ID overrides reddit.client_id.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("scout")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		// A missing default config file is fine; env and defaults apply.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.debug", false)

	// Credential keys default empty so SCOUT_REDDIT_* env overrides bind even
	// without a config file entry.
	v.SetDefault("reddit.client_id", "")
	v.SetDefault("reddit.client_secret", "")
	v.SetDefault("reddit.refresh_token", "")
	v.SetDefault("reddit.user_agent", "scout/1.0")

	v.SetDefault("search.chunk_size", 10)
	v.SetDefault("search.target_leads", 2000)
	v.SetDefault("search.query_limit", 100)
	v.SetDefault("search.query_level", 0)
	v.SetDefault("search.chunk_delay", 50*time.Millisecond)

	v.SetDefault("serp.enabled", false)
	v.SetDefault("serp.fingerprint", "chrome")

	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.dsn", "scout.db")
	v.SetDefault("storage.dir", "leads")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "sqlite", "postgres", "json", "none":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Search.ChunkSize <= 0 {
		return fmt.Errorf("search.chunk_size must be positive, got %d", c.Search.ChunkSize)
	}
	if c.Search.TargetLeads <= 0 {
		return fmt.Errorf("search.target_leads must be positive, got %d", c.Search.TargetLeads)
	}
	return nil
}

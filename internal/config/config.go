// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all harvester configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Harvest   HarvestConfig   `mapstructure:"harvest"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Headless  HeadlessConfig  `mapstructure:"headless"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Store     StoreConfig     `mapstructure:"store"`
	Relevance RelevanceConfig `mapstructure:"relevance"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls the status/metrics HTTP server.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HarvestConfig governs run orchestration and politeness.
type HarvestConfig struct {
	RegistryPath   string `mapstructure:"registry_path"`
	Concurrency    int    `mapstructure:"concurrency"`
	UserAgent      string `mapstructure:"user_agent"`
	HostDelayMs    int    `mapstructure:"host_delay_ms"`
	RespectRobots  bool   `mapstructure:"respect_robots"`
	BlockAfter403s int    `mapstructure:"block_after_403s"`
}

// HTTPConfig configures the outbound HTTP client.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// HeadlessConfig configures the headless rendering fallback.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxParallel   int  `mapstructure:"max_parallel"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
	MinDelayMs    int  `mapstructure:"min_delay_ms"`
	MaxDelayMs    int  `mapstructure:"max_delay_ms"`
}

// SourcesConfig sets the base hosts URL templates expand against.
type SourcesConfig struct {
	LawHost        string `mapstructure:"law_host"`
	RegulationHost string `mapstructure:"regulation_host"`
	LocalityHost   string `mapstructure:"locality_host"`
}

// StoreConfig sets where record logs and hash maps live on disk.
type StoreConfig struct {
	Dir string `mapstructure:"dir"`
}

// RelevanceConfig tunes the classifier without code changes.
type RelevanceConfig struct {
	// BaselineCategories lists cross-reference categories that keep a
	// minimum score of one even with zero keyword hits.
	BaselineCategories []string `mapstructure:"baseline_categories"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HARVESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("harvest.registry_path", "config/jurisdictions.yaml")
	v.SetDefault("harvest.concurrency", 2)
	v.SetDefault("harvest.user_agent", "openlawindex-harvester/0.1")
	v.SetDefault("harvest.host_delay_ms", 1000)
	v.SetDefault("harvest.respect_robots", true)
	v.SetDefault("harvest.block_after_403s", 5)
	v.SetDefault("http.timeout_seconds", 20)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("headless.min_delay_ms", 5000)
	v.SetDefault("headless.max_delay_ms", 10000)
	v.SetDefault("sources.law_host", "https://law.justia.com")
	v.SetDefault("sources.regulation_host", "https://regulations.justia.com")
	v.SetDefault("sources.locality_host", "https://stats.justia.com")
	v.SetDefault("store.dir", "corpus")
	v.SetDefault("relevance.baseline_categories", []string{"DUE_PROCESS", "FAMILY_INTEGRITY"})
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when the server is enabled")
	}
	if c.Harvest.Concurrency <= 0 {
		return fmt.Errorf("harvest.concurrency must be > 0")
	}
	if c.Harvest.HostDelayMs <= 0 {
		return fmt.Errorf("harvest.host_delay_ms must be > 0")
	}
	if c.Harvest.RegistryPath == "" {
		return fmt.Errorf("harvest.registry_path must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.Headless.Enabled && c.Headless.MaxDelayMs < c.Headless.MinDelayMs {
		return fmt.Errorf("headless.max_delay_ms must be >= headless.min_delay_ms")
	}
	if c.Store.Dir == "" {
		return fmt.Errorf("store.dir must be set")
	}
	return nil
}

// HostDelay is the minimum gap between requests to one host.
func (c Config) HostDelay() time.Duration {
	return time.Duration(c.Harvest.HostDelayMs) * time.Millisecond
}

// HTTPTimeout is the outbound request deadline.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// NavTimeout is the headless navigation deadline.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Headless.NavTimeoutSec) * time.Second
}

// HeadlessMinDelay is the lower bound of the pre-render jitter.
func (c Config) HeadlessMinDelay() time.Duration {
	return time.Duration(c.Headless.MinDelayMs) * time.Millisecond
}

// HeadlessMaxDelay is the upper bound of the pre-render jitter.
func (c Config) HeadlessMaxDelay() time.Duration {
	return time.Duration(c.Headless.MaxDelayMs) * time.Millisecond
}

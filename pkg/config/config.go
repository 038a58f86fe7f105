// Package config loads Halcyon configuration from YAML files with defaults
// and HALCYON_* environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Halcyon configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Resolver ResolverConfig `yaml:"resolver"`
	Source   SourceConfig   `yaml:"source"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	Format string `yaml:"format"`
}

// ResolverConfig configures rule resolution.
type ResolverConfig struct {
	// Workers is the number of concurrent evaluation workers (<= 1 serial).
	Workers int `yaml:"workers"`

	// CacheSize is the parse cache capacity (0 disables caching).
	CacheSize int `yaml:"cache_size"`

	// CacheTTL expires cached parse trees (0 = no expiry).
	CacheTTL Duration `yaml:"cache_ttl"`
}

// Duration is a time.Duration that YAML decodes from duration strings
// ("30s", "10m") or integer nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
		return nil
	case int:
		*d = Duration(v)
		return nil
	default:
		return fmt.Errorf("invalid duration %v (want a string like \"30s\")", raw)
	}
}

// SourceConfig configures where rules and variables are loaded from.
type SourceConfig struct {
	// RulesPath is the rule table file.
	RulesPath string `yaml:"rules_path"`

	// VarsPath is the variables (JSON or YAML) file.
	VarsPath string `yaml:"vars_path"`

	// Delimiter separates rule table columns.
	Delimiter string `yaml:"delimiter"`

	// Watch re-resolves when source files change.
	Watch bool `yaml:"watch"`

	// Schedule is a cron expression for periodic re-resolution (empty
	// disables scheduling).
	Schedule string `yaml:"schedule"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Resolver: ResolverConfig{
			Workers:   1,
			CacheSize: 1024,
		},
		Source: SourceConfig{
			Delimiter: ";",
		},
	}
}

// Load reads configuration from a YAML file, applies defaults and HALCYON_*
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyDefaults fills zero-valued fields that have non-zero defaults.
// Unmarshalling over Default() covers absent sections; this covers fields
// explicitly set to empty.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Resolver.Workers == 0 {
		cfg.Resolver.Workers = 1
	}
	if cfg.Source.Delimiter == "" {
		cfg.Source.Delimiter = ";"
	}
}

// applyEnvOverrides applies HALCYON_SECTION_FIELD environment variables.
// Environment always takes precedence over file values.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("HALCYON_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("HALCYON_LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
	if val := os.Getenv("HALCYON_RESOLVER_WORKERS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Resolver.Workers = n
		}
	}
	if val := os.Getenv("HALCYON_RESOLVER_CACHE_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Resolver.CacheSize = n
		}
	}
	if val := os.Getenv("HALCYON_RESOLVER_CACHE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Resolver.CacheTTL = Duration(d)
		}
	}
	if val := os.Getenv("HALCYON_SOURCE_RULES_PATH"); val != "" {
		cfg.Source.RulesPath = val
	}
	if val := os.Getenv("HALCYON_SOURCE_VARS_PATH"); val != "" {
		cfg.Source.VarsPath = val
	}
	if val := os.Getenv("HALCYON_SOURCE_SCHEDULE"); val != "" {
		cfg.Source.Schedule = val
	}
}

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q (want debug, info, warn, or error)", cfg.Logging.Level)
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging.format %q (want json or text)", cfg.Logging.Format)
	}

	if cfg.Resolver.Workers < 1 {
		return fmt.Errorf("invalid resolver.workers %d (must be >= 1)", cfg.Resolver.Workers)
	}
	if cfg.Resolver.CacheSize < 0 {
		return fmt.Errorf("invalid resolver.cache_size %d (must be >= 0)", cfg.Resolver.CacheSize)
	}
	if cfg.Resolver.CacheTTL < 0 {
		return fmt.Errorf("invalid resolver.cache_ttl %v (must be >= 0)", time.Duration(cfg.Resolver.CacheTTL))
	}

	if len(cfg.Source.Delimiter) != 1 {
		return fmt.Errorf("invalid source.delimiter %q (must be a single character)", cfg.Source.Delimiter)
	}

	return nil
}

// Package config resolves memocache configuration from defaults, YAML files,
// and environment variables, in that order, with CLI flags applied last by
// the caller.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/memocache"
)

// Environment variable names recognized by LoadWithEnv.
const (
	EnvConfigFile   = "MEMOCACHE_CONFIG"
	EnvLogLevel     = "MEMOCACHE_LOG_LEVEL"
	EnvLogFormat    = "MEMOCACHE_LOG_FORMAT"
	EnvLogFile      = "MEMOCACHE_LOG_FILE"
	EnvStoreName    = "MEMOCACHE_STORE_NAME"
	EnvSingleflight = "MEMOCACHE_SINGLEFLIGHT"
)

// DefaultSchemaVersion is stamped on configs that do not declare one.
const DefaultSchemaVersion = "1.0.0"

// Config is the resolved memocache configuration.
type Config struct {
	// SchemaVersion declares which config schema the file was written for.
	SchemaVersion string `yaml:"schema_version"`

	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	Demo    DemoConfig    `yaml:"demo"`
}

// CacheConfig configures the store a command builds.
type CacheConfig struct {
	// Name labels the store in log fields and metric labels.
	Name string `yaml:"name"`

	// DefaultTTL applies to writes without an explicit TTL. Accepts bare
	// seconds ("3600") or a Go duration ("1h"); "0" means entries never
	// expire.
	DefaultTTL string `yaml:"default_ttl"`

	// Singleflight shares one in-flight computation among concurrent
	// misses for the same key.
	Singleflight bool `yaml:"singleflight"`
}

// TTL parses the configured default TTL.
func (c CacheConfig) TTL() (time.Duration, error) {
	if c.DefaultTTL == "" {
		return 0, nil
	}
	return memocache.ParseTTL(c.DefaultTTL)
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string      `yaml:"level"`
	Format string      `yaml:"format"`
	File   string      `yaml:"file"`
	Audit  AuditConfig `yaml:"audit"`
}

// AuditConfig configures the command audit trail.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`
}

// DemoConfig shapes the synthetic workload run by demo and watch.
type DemoConfig struct {
	// Tasks is the total number of memoized calls to issue.
	Tasks int `yaml:"tasks"`

	// Workers bounds how many calls run in parallel.
	Workers int `yaml:"workers"`

	// Keys is the number of distinct hot keys the calls are spread over.
	Keys int `yaml:"keys"`

	// FailureRate is the fraction of computations that fail, 0 to 1.
	FailureRate float64 `yaml:"failure_rate"`

	// Seed makes the workload reproducible.
	Seed uint64 `yaml:"seed"`
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *Config {
	return &Config{
		SchemaVersion: DefaultSchemaVersion,
		Cache: CacheConfig{
			Name:       "default",
			DefaultTTL: "1h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Demo: DemoConfig{
			Tasks:       50,
			Workers:     4,
			Keys:        8,
			FailureRate: 0,
			Seed:        1,
		},
	}
}

// Load resolves configuration with os.LookupEnv. See LoadWithEnv.
func Load(explicitPath string) (*Config, error) {
	return LoadWithEnv(explicitPath, os.LookupEnv)
}

// LoadWithEnv resolves configuration in precedence order: built-in defaults,
// then the user config file, then a project-local file discovered by walking
// up from the working directory, then environment variables. An explicit path
// replaces both file layers and must exist.
func LoadWithEnv(explicitPath string, lookup func(string) (string, bool)) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg := DefaultConfig()

	if explicitPath == "" {
		if fromEnv, ok := lookup(EnvConfigFile); ok && fromEnv != "" {
			explicitPath = fromEnv
		}
	}

	switch {
	case explicitPath != "":
		if err := ShallowMergeYAML(cfg, explicitPath); err != nil {
			return nil, err
		}
	default:
		if path, ok := userConfigPath(); ok {
			if err := ShallowMergeYAML(cfg, path); err != nil {
				return nil, err
			}
		}
		wd, err := os.Getwd()
		if err == nil {
			if path, findErr := FindProjectConfig(wd); findErr == nil {
				if err := ShallowMergeYAML(cfg, path); err != nil {
					return nil, err
				}
			}
		}
	}

	applyEnv(cfg, lookup)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(memocache.EnvTTL); ok && v != "" {
		cfg.Cache.DefaultTTL = v
	}
	if v, ok := lookup(memocache.EnvTTLDisabled); ok && v != "" {
		if disabled, err := strconv.ParseBool(v); err == nil && disabled {
			cfg.Cache.DefaultTTL = "0"
		}
	}
	if v, ok := lookup(EnvStoreName); ok && v != "" {
		cfg.Cache.Name = v
	}
	if v, ok := lookup(EnvSingleflight); ok && v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Cache.Singleflight = enabled
		}
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.Logging.Format = v
	}
	if v, ok := lookup(EnvLogFile); ok && v != "" {
		cfg.Logging.File = v
	}
}

// Validate checks the resolved configuration for values no command could
// run with.
func (c *Config) Validate() error {
	if err := checkSchemaVersion(c.SchemaVersion); err != nil {
		return err
	}

	ttl, err := c.Cache.TTL()
	if err != nil {
		return fmt.Errorf("cache.default_ttl: %w", err)
	}
	if err := memocache.ValidateTTL(ttl); err != nil {
		return fmt.Errorf("cache.default_ttl: %w", err)
	}

	if c.Logging.Level != "" {
		if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
			return fmt.Errorf("logging.level: %w", err)
		}
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}

	if c.Demo.Tasks <= 0 {
		return fmt.Errorf("demo.tasks must be positive, got %d", c.Demo.Tasks)
	}
	if c.Demo.Workers <= 0 {
		return fmt.Errorf("demo.workers must be positive, got %d", c.Demo.Workers)
	}
	if c.Demo.Keys <= 0 {
		return fmt.Errorf("demo.keys must be positive, got %d", c.Demo.Keys)
	}
	if c.Demo.FailureRate < 0 || c.Demo.FailureRate > 1 {
		return fmt.Errorf("demo.failure_rate must be between 0 and 1, got %g", c.Demo.FailureRate)
	}

	return nil
}

// Package config loads simbooks settings from a TOML file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Realm  int
	Log    LogConfig
	Cache  CacheConfig
	Redis  RedisConfig
	Prices PricesConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// CacheConfig selects where the price cache blob lives.
type CacheConfig struct {
	Backend string // file or redis
	Path    string // used by the file backend
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// PricesConfig configures the market price history client.
type PricesConfig struct {
	BaseURL          string
	Timeout          time.Duration
	FailureThreshold uint32 // consecutive failures before the breaker opens
	OpenTimeout      time.Duration
}

// Load reads configuration.
// Priority (highest to lowest):
// 1. Environment variables with SIMBOOKS_ prefix (e.g., SIMBOOKS_CACHE_BACKEND)
// 2. simbooks.toml in the working directory or $HOME/.config/simbooks
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("simbooks")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "simbooks"))
	}
	return load(v)
}

// LoadFile reads configuration from an explicit file.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SIMBOOKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Realm: v.GetInt("realm"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Cache: CacheConfig{
			Backend: v.GetString("cache.backend"),
			Path:    v.GetString("cache.path"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Key:      v.GetString("redis.key"),
		},
		Prices: PricesConfig{
			BaseURL:          v.GetString("prices.base_url"),
			Timeout:          v.GetDuration("prices.timeout"),
			FailureThreshold: v.GetUint32("prices.failure_threshold"),
			OpenTimeout:      v.GetDuration("prices.open_timeout"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("realm", 0)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")

	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.path", filepath.Join(".simbooks", "prices.json"))

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "simbooks:prices")

	v.SetDefault("prices.base_url", "https://www.simcompanies.com")
	v.SetDefault("prices.timeout", 10*time.Second)
	v.SetDefault("prices.failure_threshold", 5)
	v.SetDefault("prices.open_timeout", 30*time.Second)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Realm < 0 {
		return fmt.Errorf("invalid realm %d", c.Realm)
	}
	switch c.Cache.Backend {
	case "file":
		if c.Cache.Path == "" {
			return fmt.Errorf("cache.path is required for the file backend")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q (want file or redis)", c.Cache.Backend)
	}
	if c.Prices.BaseURL == "" {
		return fmt.Errorf("prices.base_url is required")
	}
	return nil
}

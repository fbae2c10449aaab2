package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config is read from GROCER_* environment variables, optionally layered
// over a .env style file.
type Config struct {
	Port          string `mapstructure:"PORT"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFormat     string `mapstructure:"LOG_FORMAT"`
	CatalogPath   string `mapstructure:"CATALOG_PATH"`
	CartBackend   string `mapstructure:"CART_BACKEND"`
	DBPath        string `mapstructure:"DB_PATH"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPrefix   string `mapstructure:"REDIS_PREFIX"`
	RateLimit     int    `mapstructure:"RATE_LIMIT"`
}

var defaults = map[string]any{
	"PORT":           "8080",
	"LOG_LEVEL":      "info",
	"LOG_FORMAT":     "text",
	"CATALOG_PATH":   "",
	"CART_BACKEND":   BackendSQLite,
	"DB_PATH":        ":memory:",
	"REDIS_ADDR":     "localhost:6379",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,
	"REDIS_PREFIX":   "grocer",
	"RATE_LIMIT":     60,
}

// Load reads configuration. If file is non-empty it is read first and
// environment variables override it.
func Load(file string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GROCER")
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.CartBackend = strings.ToLower(strings.TrimSpace(c.CartBackend))
	switch c.CartBackend {
	case BackendMemory, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("config: unknown cart backend %q", c.CartBackend)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("config: rate limit must not be negative, got %d", c.RateLimit)
	}
	if c.Port == "" {
		return fmt.Errorf("config: port is required")
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Runtime configuration, loaded from environment variables and an optional
// config file. Every key has a default suitable for local development
// against an in-process sqlite database.
type Config struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
	HTTPAddr string `mapstructure:"http_addr"`

	Database   Database   `mapstructure:"database"`
	Redis      Redis      `mapstructure:"redis"`
	Routing    Routing    `mapstructure:"routing"`
	Generation Generation `mapstructure:"generation"`
}

type Database struct {
	// Driver selects the backend: "sqlite" or "pgx".
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	SeedPath string `mapstructure:"seed_path"`
}

type Redis struct {
	// Addr empty disables the redis distance cache.
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type Routing struct {
	// BaseURL empty disables the road network provider; distances fall
	// back to great-circle math.
	BaseURL    string  `mapstructure:"base_url"`
	APIKey     string  `mapstructure:"api_key"`
	MaxAreaKm2 float64 `mapstructure:"max_area_km2"`
}

type Generation struct {
	MinMarginPercent float64 `mapstructure:"min_margin_percent"`
	MaxRoutes        int     `mapstructure:"max_routes"`
}

// Load reads configuration from FREIGHT_* environment variables, plus an
// optional config.yaml in the working directory or /etc/freight-matching.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/freight.db")
	v.SetDefault("database.seed_path", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)
	v.SetDefault("routing.base_url", "")
	v.SetDefault("routing.api_key", "")
	v.SetDefault("routing.max_area_km2", 0)
	v.SetDefault("generation.min_margin_percent", 20)
	v.SetDefault("generation.max_routes", 10)

	v.SetEnvPrefix("FREIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/freight-matching")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("load config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "pgx":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.Generation.MinMarginPercent < 0 || c.Generation.MinMarginPercent >= 100 {
		return fmt.Errorf("generation min_margin_percent %v out of range", c.Generation.MinMarginPercent)
	}
	if c.Generation.MaxRoutes < 1 {
		return fmt.Errorf("generation max_routes must be positive")
	}
	return nil
}

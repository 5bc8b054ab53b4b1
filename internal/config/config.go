// Package config loads application settings from config.yaml and
// SCTRADE_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// UEXConfig holds settings for the UEX market-data API.
type UEXConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig holds caller-facing rate-limit settings.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

// RedisConfig holds the optional Redis backing for the rate limiter.
// An empty Addr means the in-memory limiter is used.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Config is the full application configuration.
type Config struct {
	Port      int             `mapstructure:"port"`
	LogLevel  string          `mapstructure:"log_level"`
	DBPath    string          `mapstructure:"db_path"`
	UEX       UEXConfig       `mapstructure:"uex"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Port:     13380,
		LogLevel: "info",
		DBPath:   "advisor.db",
		UEX: UEXConfig{
			BaseURL: "https://api.uexcorp.space/2.0",
			Timeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 30,
		},
	}
}

// Load reads config.yaml from dir (falling back to the working directory when
// dir is empty) plus SCTRADE_* environment overrides. A missing config file
// is not an error; defaults apply.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	} else {
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SCTRADE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("port", def.Port)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("uex.base_url", def.UEX.BaseURL)
	v.SetDefault("uex.token", "")
	v.SetDefault("uex.timeout", def.UEX.Timeout)
	v.SetDefault("rate_limit.requests_per_minute", def.RateLimit.RequestsPerMinute)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.RateLimit.RequestsPerMinute <= 0 {
		cfg.RateLimit.RequestsPerMinute = def.RateLimit.RequestsPerMinute
	}
	return &cfg, nil
}

// Package config loads runtime configuration from the environment and an
// optional config file.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the service configuration. RedisAddr and DatabaseURL double
// as capability flags: an empty RedisAddr means local-only mode, an empty
// DatabaseURL means attachment uploads are skipped.
type Config struct {
	HTTPAddr    string        `mapstructure:"http_addr"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	DatabaseURL string        `mapstructure:"database_url"`
	BaseURL     string        `mapstructure:"base_url"`
	AuthSecret  string        `mapstructure:"auth_secret"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
}

// Load reads configuration from merchplan.yaml (if present) and the
// environment. Environment keys are upper-snake: HTTP_ADDR, REDIS_ADDR,
// DATABASE_URL, BASE_URL, AUTH_SECRET, SESSION_TTL.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("redis_addr", "")
	v.SetDefault("database_url", "")
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("auth_secret", "super-secret-key") // move to env in prod
	v.SetDefault("session_ttl", 15*time.Minute)

	v.SetConfigName("merchplan")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

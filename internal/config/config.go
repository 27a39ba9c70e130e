package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is everything the server needs at startup. Values come from
// config.yaml (optional) overridden by PLUME_* environment variables.
type Config struct {
	Addr    string `mapstructure:"addr"`
	GinMode string `mapstructure:"gin_mode"`

	// DatabaseDSN selects the store: a postgres:// URL or a sqlite
	// file path (":memory:" works for throwaway runs).
	DatabaseDSN string `mapstructure:"database_dsn"`

	// RedisAddr empty means an embedded in-process redis is started,
	// so dev and test runs need no external service.
	RedisAddr string `mapstructure:"redis_addr"`

	PageSize      int           `mapstructure:"page_size"`
	IndexCacheTTL time.Duration `mapstructure:"index_cache_ttl"`

	SessionSecret   string        `mapstructure:"session_secret"`
	SessionLifetime time.Duration `mapstructure:"session_lifetime"`

	MediaDir      string `mapstructure:"media_dir"`
	TemplatesGlob string `mapstructure:"templates_glob"`

	SentryDSN    string `mapstructure:"sentry_dsn"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("database_dsn", "plume.db")
	v.SetDefault("redis_addr", "")
	v.SetDefault("page_size", 10)
	v.SetDefault("index_cache_ttl", 20*time.Second)
	v.SetDefault("session_secret", "")
	v.SetDefault("session_lifetime", 24*time.Hour)
	v.SetDefault("media_dir", "media")
	v.SetDefault("templates_glob", "web/templates/*.html")
	v.SetDefault("sentry_dsn", "")
	v.SetDefault("otlp_endpoint", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("plume")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A config file is optional; env and defaults carry a dev run.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

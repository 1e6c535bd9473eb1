package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads.
const EnvPrefix = "SCRY"

// keys lists every configuration key so that environment variables are bound
// even for keys without defaults.
var keys = []string{
	"server.port",
	"server.log_level",
	"server.shutdown_timeout_seconds",
	"database.url",
	"database.max_open_conns",
	"database.max_idle_conns",
	"auth.jwt_secret",
	"auth.issuer",
	"auth.clock_skew_seconds",
	"llm.provider",
	"llm.gemini_api_key",
	"llm.gemini_model",
	"llm.openai_api_key",
	"llm.openai_model",
	"llm.openai_base_url",
	"llm.max_retries",
	"llm.retry_delay_seconds",
	"llm.requests_per_second",
	"llm.burst",
	"llm.timeout_seconds",
	"progression.default_timezone",
	"progression.challenge_retention_days",
	"progression.cleanup_cron",
	"progression.achievement_cache_max_users",
	"progression.achievement_cache_ttl_seconds",
	"progression.level_base_xp",
	"progression.level_exponent",
	"progression.xp_per_card",
	"progression.xp_per_minute",
	"progression.session_xp_cap",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("auth.clock_skew_seconds", 30)

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.gemini_model", "gemini-2.0-flash")
	v.SetDefault("llm.openai_model", "gpt-4o-mini")
	v.SetDefault("llm.openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("llm.requests_per_second", 2.0)
	v.SetDefault("llm.burst", 4)
	v.SetDefault("llm.timeout_seconds", 30)

	v.SetDefault("progression.default_timezone", "UTC")
	v.SetDefault("progression.challenge_retention_days", 7)
	v.SetDefault("progression.cleanup_cron", "15 3 * * *")
	v.SetDefault("progression.achievement_cache_max_users", 10000)
	v.SetDefault("progression.achievement_cache_ttl_seconds", 600)
}

// Load configuration from environment variables and optionally a config file.
//
// A .env file in the working directory is loaded first if present; it never
// overrides variables already set in the process environment. configPath may
// name a YAML file; when empty, config.yaml in the working directory is used
// if it exists. Environment variables (SCRY_ prefix, dots replaced by
// underscores) take precedence over file values.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

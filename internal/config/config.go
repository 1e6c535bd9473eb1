package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database" validate:"required"`
	Auth        AuthConfig        `mapstructure:"auth" validate:"required"`
	LLM         LLMConfig         `mapstructure:"llm" validate:"required"`
	Progression ProgressionConfig `mapstructure:"progression" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
// Tokens are issued by the managed backend; this service only verifies them.
type AuthConfig struct {
	JWTSecret        string `mapstructure:"jwt_secret" validate:"required,min=32"`
	Issuer           string `mapstructure:"issuer"`
	ClockSkewSeconds int    `mapstructure:"clock_skew_seconds" validate:"gte=0"`
}

// LLMConfig contains the grading oracle settings.
type LLMConfig struct {
	Provider          string  `mapstructure:"provider" validate:"required,oneof=gemini openai"`
	GeminiAPIKey      string  `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	GeminiModel       string  `mapstructure:"gemini_model" validate:"required_if=Provider gemini"`
	OpenAIAPIKey      string  `mapstructure:"openai_api_key" validate:"required_if=Provider openai"`
	OpenAIModel       string  `mapstructure:"openai_model" validate:"required_if=Provider openai"`
	OpenAIBaseURL     string  `mapstructure:"openai_base_url" validate:"omitempty,url"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"gte=0"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=1"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"gte=1"`
}

// ProgressionConfig contains settings for streaks and daily challenges.
type ProgressionConfig struct {
	// DefaultTimezone is used for calendar-day math when a request carries none.
	DefaultTimezone        string `mapstructure:"default_timezone" validate:"required,timezone"`
	ChallengeRetentionDays int    `mapstructure:"challenge_retention_days" validate:"gte=1"`
	CleanupCron            string `mapstructure:"cleanup_cron" validate:"required"`

	// Bounds on the in-process cache of unlocked achievements.
	AchievementCacheMaxUsers   int `mapstructure:"achievement_cache_max_users" validate:"gte=1"`
	AchievementCacheTTLSeconds int `mapstructure:"achievement_cache_ttl_seconds" validate:"gte=1"`

	// Curve overrides. Zero keeps the built-in value.
	LevelBaseXP   float64 `mapstructure:"level_base_xp" validate:"gte=0"`
	LevelExponent float64 `mapstructure:"level_exponent" validate:"gte=0"`
	XPPerCard     float64 `mapstructure:"xp_per_card" validate:"gte=0"`
	XPPerMinute   float64 `mapstructure:"xp_per_minute" validate:"gte=0"`
	SessionXPCap  int     `mapstructure:"session_xp_cap" validate:"gte=0"`
}

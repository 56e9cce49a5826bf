// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.robolearn/config.yaml or ./config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - AI: provider, model, embedder used by skills
//   - Storage: PostgreSQL connection (see storage.go)
//   - Cache: optional Redis translation cache
//   - Content: chapter catalog location
//   - Server: HTTP API settings
//   - Observability: OTLP trace export
//
// Error Handling:
//   - Sentinel errors for Go-idiomatic checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidEmbedderModel indicates the embedder model is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")

	// ErrInvalidTopK indicates the retrieval top-k default is out of range.
	ErrInvalidTopK = errors.New("invalid retrieval top_k")
)

const (
	// DefaultEmbedderModel is the default Gemini embedder model.
	// gemini-embedding-001 supports truncation to 768 dimensions via
	// OutputDimensionality; the passages schema uses vector(768).
	DefaultEmbedderModel = "gemini-embedding-001"

	// DefaultModelName is the generation model used by all skills.
	DefaultModelName = "gemini-2.5-flash"
)

// Config stores application configuration.
// SECURITY: sensitive fields are masked in MarshalJSON. When adding new
// sensitive fields (passwords, API keys, tokens), update MarshalJSON.
type Config struct {
	// AI provider and model configuration
	ModelName     string  `mapstructure:"model_name" json:"model_name"`
	EmbedderModel string  `mapstructure:"embedder_model" json:"embedder_model"`
	Temperature   float32 `mapstructure:"temperature" json:"temperature"`
	MaxTokens     int     `mapstructure:"max_tokens" json:"max_tokens"`

	// Outbound provider call budget (requests per second, shared limiter).
	ProviderRPS float64 `mapstructure:"provider_rps" json:"provider_rps"`

	// Per-skill outbound call timeout in seconds.
	SkillTimeoutSeconds int `mapstructure:"skill_timeout_seconds" json:"skill_timeout_seconds"`

	// Storage configuration (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// Optional Redis translation cache. Empty URL disables caching.
	RedisURL            string `mapstructure:"redis_url" json:"redis_url"`
	TranslationCacheTTL int    `mapstructure:"translation_cache_ttl_hours" json:"translation_cache_ttl_hours"`

	// Chapter catalog root directory.
	ContentDir string `mapstructure:"content_dir" json:"content_dir"`

	// Retrieval configuration
	RetrievalTopK int `mapstructure:"retrieval_top_k" json:"retrieval_top_k"`

	// Server configuration (serve mode only)
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
	TrustProxy  bool     `mapstructure:"trust_proxy" json:"trust_proxy"`
	RateBurst   int      `mapstructure:"rate_burst" json:"rate_burst"`

	// Observability configuration
	Otel OtelConfig `mapstructure:"otel" json:"otel"`

	// Logging
	LogLevel  string `mapstructure:"log_level" json:"log_level"`
	LogFormat string `mapstructure:"log_format" json:"log_format"`
}

// OtelConfig holds OTLP trace export settings.
// Traces are exported over OTLP HTTP to a local collector/agent which
// handles authentication, buffering, and forwarding.
type OtelConfig struct {
	Enabled     bool   `mapstructure:"enabled" json:"enabled"`
	Endpoint    string `mapstructure:"endpoint" json:"endpoint"`
	ServiceName string `mapstructure:"service_name" json:"service_name"`
	Environment string `mapstructure:"environment" json:"environment"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > defaults.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".robolearn")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use defaults.
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL, if set, overrides individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	viper.SetDefault("model_name", DefaultModelName)
	viper.SetDefault("embedder_model", DefaultEmbedderModel)
	viper.SetDefault("temperature", 0.7)
	viper.SetDefault("max_tokens", 2500)
	viper.SetDefault("provider_rps", 2.0)
	viper.SetDefault("skill_timeout_seconds", 60)

	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "robolearn")
	viper.SetDefault("postgres_password", "robolearn_dev_password")
	viper.SetDefault("postgres_db_name", "robolearn")
	viper.SetDefault("postgres_ssl_mode", "disable")

	viper.SetDefault("redis_url", "")
	viper.SetDefault("translation_cache_ttl_hours", 7*24)

	viper.SetDefault("content_dir", "content")
	viper.SetDefault("retrieval_top_k", 5)

	viper.SetDefault("cors_origins", []string{"http://localhost:3000"})
	viper.SetDefault("trust_proxy", false)
	viper.SetDefault("rate_burst", 60)

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.endpoint", "localhost:4318")
	viper.SetDefault("otel.service_name", "robolearn")
	viper.SetDefault("otel.environment", "dev")

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
}

// bindEnvVariables binds environment variables explicitly.
// GEMINI_API_KEY is read directly by the Genkit googlegenai plugin, not
// via Viper; Validate() only checks its presence.
func bindEnvVariables() {
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("model_name", "ROBOLEARN_MODEL_NAME")
	mustBind("embedder_model", "ROBOLEARN_EMBEDDER_MODEL")
	mustBind("redis_url", "ROBOLEARN_REDIS_URL")
	mustBind("content_dir", "ROBOLEARN_CONTENT_DIR")
	mustBind("cors_origins", "ROBOLEARN_CORS_ORIGINS")
	mustBind("trust_proxy", "ROBOLEARN_TRUST_PROXY")
	mustBind("rate_burst", "ROBOLEARN_RATE_BURST")
	mustBind("otel.enabled", "ROBOLEARN_OTEL_ENABLED")
	mustBind("otel.endpoint", "ROBOLEARN_OTEL_ENDPOINT")
	mustBind("log_level", "ROBOLEARN_LOG_LEVEL")
	mustBind("log_format", "ROBOLEARN_LOG_FORMAT")
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "████████"

// MarshalJSON masks sensitive fields for safe logging.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config // avoid recursion
	a := alias(c)
	if a.PostgresPassword != "" {
		a.PostgresPassword = maskedValue
	}
	if a.RedisURL != "" {
		a.RedisURL = maskedValue
	}
	return json.Marshal(a)
}

package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Catalog   CatalogConfig
	AI        AIConfig
	Generator GeneratorConfig
	Search    SearchConfig
	RateLimit RateLimitConfig
	Exports   ExportsConfig
	Analytics AnalyticsConfig
}

type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	ResponsesTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CatalogConfig points at the upstream course catalog GraphQL API.
type CatalogConfig struct {
	BaseURL  string
	Timeout  time.Duration
	Retries  int
	CacheTTL time.Duration
}

// AIConfig holds Gemini credentials for query parsing and explanations.
type AIConfig struct {
	Enabled bool
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GeneratorConfig tunes the schedule generation pipeline.
type GeneratorConfig struct {
	MaxCombinations  int
	MaxCourses       int
	MaxOptionsCap    int
	QualityThreshold float64
}

// SearchConfig tunes catalog search behaviour.
type SearchConfig struct {
	MaxResults      int
	SuggestionLimit int
	CacheTTL        time.Duration
}

// RateLimitConfig governs the per-client sliding window limiter.
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// ExportsConfig configures schedule export rendering and artifact retention.
type ExportsConfig struct {
	Enabled         bool
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	CleanupInterval time.Duration
	CleanupAfter    time.Duration
}

// AnalyticsConfig governs the background usage-event queue.
type AnalyticsConfig struct {
	Enabled    bool
	Workers    int
	BufferSize int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Redis = RedisConfig{
		Host:         v.GetString("REDIS_HOST"),
		Port:         v.GetInt("REDIS_PORT"),
		Password:     v.GetString("REDIS_PASSWORD"),
		DB:           v.GetInt("REDIS_DB"),
		ResponsesTTL: parseDuration(v.GetString("REDIS_RESPONSES_TTL"), time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Catalog = CatalogConfig{
		BaseURL:  v.GetString("CATALOG_BASE_URL"),
		Timeout:  parseDuration(v.GetString("CATALOG_TIMEOUT"), 10*time.Second),
		Retries:  v.GetInt("CATALOG_RETRIES"),
		CacheTTL: parseDuration(v.GetString("CATALOG_CACHE_TTL"), 5*time.Minute),
	}

	cfg.AI = AIConfig{
		Enabled: v.GetBool("ENABLE_AI"),
		APIKey:  v.GetString("GEMINI_API_KEY"),
		Model:   v.GetString("GEMINI_MODEL"),
		Timeout: parseDuration(v.GetString("AI_TIMEOUT"), 30*time.Second),
	}

	cfg.Generator = GeneratorConfig{
		MaxCombinations:  v.GetInt("GENERATOR_MAX_COMBINATIONS"),
		MaxCourses:       v.GetInt("GENERATOR_MAX_COURSES"),
		MaxOptionsCap:    v.GetInt("GENERATOR_MAX_OPTIONS_CAP"),
		QualityThreshold: v.GetFloat64("GENERATOR_QUALITY_THRESHOLD"),
	}

	cfg.Search = SearchConfig{
		MaxResults:      v.GetInt("SEARCH_MAX_RESULTS"),
		SuggestionLimit: v.GetInt("SEARCH_SUGGESTION_LIMIT"),
		CacheTTL:        parseDuration(v.GetString("SEARCH_CACHE_TTL"), 5*time.Minute),
	}

	cfg.RateLimit = RateLimitConfig{
		Enabled:  v.GetBool("ENABLE_RATE_LIMIT"),
		Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
		Window:   parseDuration(v.GetString("RATE_LIMIT_WINDOW"), time.Hour),
	}

	cfg.Exports = ExportsConfig{
		Enabled:         v.GetBool("ENABLE_EXPORTS"),
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval: parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
		CleanupAfter:    parseDuration(v.GetString("EXPORTS_CLEANUP_AFTER"), 72*time.Hour),
	}

	cfg.Analytics = AnalyticsConfig{
		Enabled:    v.GetBool("ENABLE_ANALYTICS"),
		Workers:    v.GetInt("ANALYTICS_WORKERS"),
		BufferSize: v.GetInt("ANALYTICS_BUFFER_SIZE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_RESPONSES_TTL", "60s")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CATALOG_BASE_URL", "https://graph.coursetable.com/api/v1/graphql")
	v.SetDefault("CATALOG_TIMEOUT", "10s")
	v.SetDefault("CATALOG_RETRIES", 3)
	v.SetDefault("CATALOG_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_AI", false)
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("AI_TIMEOUT", "30s")

	v.SetDefault("GENERATOR_MAX_COMBINATIONS", 1000)
	v.SetDefault("GENERATOR_MAX_COURSES", 10)
	v.SetDefault("GENERATOR_MAX_OPTIONS_CAP", 20)
	v.SetDefault("GENERATOR_QUALITY_THRESHOLD", 0.0)

	v.SetDefault("SEARCH_MAX_RESULTS", 50)
	v.SetDefault("SEARCH_SUGGESTION_LIMIT", 5)
	v.SetDefault("SEARCH_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_RATE_LIMIT", true)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "1h")

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("EXPORTS_CLEANUP_AFTER", "72h")

	v.SetDefault("ENABLE_ANALYTICS", true)
	v.SetDefault("ANALYTICS_WORKERS", 1)
	v.SetDefault("ANALYTICS_BUFFER_SIZE", 64)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

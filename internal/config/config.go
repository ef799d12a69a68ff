package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr      string
	LogLevel  string
	LogFormat string

	DBDriver string
	DBDSN    string

	RedisURL        string
	OptionsCacheTTL time.Duration

	GradingWorkerCount    int
	GradingQueueSize      int
	GenerationWorkerCount int
	GenerationQueueSize   int

	LoadMoreBatch        int
	DefaultGenerateCount int

	LLMProvider   string
	LLMModel      string
	LLMMaxRetries int
	LLMTimeout    time.Duration

	AnthropicAPIKey  string
	OpenAIAPIKey     string
	GeminiAPIKey     string
	OpenRouterAPIKey string
}

var (
	validDrivers   = map[string]bool{"sqlite3": true, "postgres": true}
	validProviders = map[string]bool{"anthropic": true, "openai": true, "gemini": true, "openrouter": true, "none": true}
	validLevels    = map[string]bool{"DEBUG": true, "INFO": true, "WARN": true, "WARNING": true, "ERROR": true}
)

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:      envOr("ADDR", ":8080"),
		LogLevel:  envOr("LOG_LEVEL", "INFO"),
		LogFormat: envOr("LOG_FORMAT", "text"),

		DBDriver: envOr("DB_DRIVER", "sqlite3"),
		DBDSN:    envOr("DB_DSN", "file:sqlflash.db"),

		RedisURL:        os.Getenv("REDIS_URL"),
		OptionsCacheTTL: envDurationOr("OPTIONS_CACHE_TTL", 7*24*time.Hour),

		GradingWorkerCount:    envIntOr("GRADING_WORKER_COUNT", 4),
		GradingQueueSize:      envIntOr("GRADING_QUEUE_SIZE", 64),
		GenerationWorkerCount: envIntOr("GENERATION_WORKER_COUNT", 1),
		GenerationQueueSize:   envIntOr("GENERATION_QUEUE_SIZE", 16),

		LoadMoreBatch:        envIntOr("LOAD_MORE_BATCH", 5),
		DefaultGenerateCount: envIntOr("DEFAULT_GENERATE_COUNT", 5),

		LLMProvider:   strings.ToLower(envOr("LLM_PROVIDER", "anthropic")),
		LLMModel:      os.Getenv("LLM_MODEL"),
		LLMMaxRetries: envIntOr("LLM_MAX_RETRIES", 3),
		LLMTimeout:    envDurationOr("LLM_TIMEOUT", 30*time.Second),

		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if !validLevels[strings.ToUpper(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json (got %q)", c.LogFormat))
	}
	if !validDrivers[c.DBDriver] {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite3 or postgres (got %q)", c.DBDriver))
	}
	if c.DBDSN == "" {
		errs = append(errs, errors.New("DB_DSN cannot be empty"))
	}
	if c.RedisURL != "" && !strings.HasPrefix(c.RedisURL, "redis://") && !strings.HasPrefix(c.RedisURL, "rediss://") {
		errs = append(errs, fmt.Errorf("REDIS_URL must use the redis:// or rediss:// scheme"))
	}
	if c.OptionsCacheTTL <= 0 {
		errs = append(errs, errors.New("OPTIONS_CACHE_TTL must be positive"))
	}
	if c.GradingWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("GRADING_WORKER_COUNT must be at least 1 (got %d)", c.GradingWorkerCount))
	}
	if c.GradingQueueSize < 1 {
		errs = append(errs, fmt.Errorf("GRADING_QUEUE_SIZE must be at least 1 (got %d)", c.GradingQueueSize))
	}
	if c.GenerationWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("GENERATION_WORKER_COUNT must be at least 1 (got %d)", c.GenerationWorkerCount))
	}
	if c.GenerationQueueSize < 1 {
		errs = append(errs, fmt.Errorf("GENERATION_QUEUE_SIZE must be at least 1 (got %d)", c.GenerationQueueSize))
	}
	if c.LoadMoreBatch < 1 || c.LoadMoreBatch > 100 {
		errs = append(errs, fmt.Errorf("LOAD_MORE_BATCH must be between 1 and 100 (got %d)", c.LoadMoreBatch))
	}
	if c.DefaultGenerateCount < 1 || c.DefaultGenerateCount > 20 {
		errs = append(errs, fmt.Errorf("DEFAULT_GENERATE_COUNT must be between 1 and 20 (got %d)", c.DefaultGenerateCount))
	}
	if !validProviders[c.LLMProvider] {
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be one of anthropic, openai, gemini, openrouter, none (got %q)", c.LLMProvider))
	}
	if c.LLMMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("LLM_MAX_RETRIES cannot be negative (got %d)", c.LLMMaxRetries))
	}
	if c.LLMTimeout <= 0 {
		errs = append(errs, errors.New("LLM_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// LLMAPIKey returns the key configured for the selected provider.
func (c Config) LLMAPIKey() string {
	switch c.LLMProvider {
	case "anthropic":
		return c.AnthropicAPIKey
	case "openai":
		return c.OpenAIAPIKey
	case "gemini":
		return c.GeminiAPIKey
	case "openrouter":
		return c.OpenRouterAPIKey
	default:
		return ""
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}

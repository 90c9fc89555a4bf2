package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// OpenAI (chat, speech, transcription, images)
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// fal.ai image models
	FalAPIKey  string
	FalBaseURL string

	// Supabase
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseJWTSecret     string
	SupabaseStorageBucket string

	// Database
	DatabaseURL string

	// Server
	Port        string
	Environment string
	LogLevel    string

	// Generation
	MediaMaxConcurrency  int
	ProviderRateLimitRPM int
	CatalogPath          string
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// FromEnv reads configuration with defaults applied but skips Validate, for
// tools that need only part of it. A .env file in the working directory is
// loaded first when present; real environment variables win.
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		FalAPIKey:  getEnv("FAL_API_KEY", ""),
		FalBaseURL: getEnv("FAL_BASE_URL", "https://fal.run"),

		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseJWTSecret:     getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "video-assets"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		CatalogPath: getEnv("CATALOG_PATH", ""),
	}

	var err error
	if cfg.MediaMaxConcurrency, err = getEnvInt("MEDIA_MAX_CONCURRENCY", 0); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.ProviderRateLimitRPM, err = getEnvInt("PROVIDER_RATE_LIMIT_RPM", 0); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MediaMaxConcurrency < 0 {
		return fmt.Errorf("MEDIA_MAX_CONCURRENCY must not be negative")
	}
	if c.ProviderRateLimitRPM < 0 {
		return fmt.Errorf("PROVIDER_RATE_LIMIT_RPM must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

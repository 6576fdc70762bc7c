package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config contains all runtime settings for the telehealth session service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	LogLevel string
	LogFile  string

	// DatabaseURL selects the postgres-backed session store. Empty means the
	// in-memory store, which only makes sense for local development and tests.
	DatabaseURL string

	BlobProvider  string
	StorageAPIURL string
	StorageAPIKey string
	StorageBucket string
	BlobLocalDir  string

	TranscribeProvider string
	WhisperAPIURL      string
	WhisperModel       string
	OpenAIAPIKey       string

	SummaryProvider string
	SummaryAPIURL   string
	SummaryAPIBase  string
	SummaryModel    string

	JWTSecret string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:           envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:   envOrDefault("APP_METRICS_NAMESPACE", "horizon"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFile:            stringsTrimSpace("LOG_FILE"),
		DatabaseURL:        stringsTrimSpace("DATABASE_URL"),
		BlobProvider:       strings.ToLower(envOrDefault("BLOB_PROVIDER", "supabase")),
		StorageAPIURL:      stringsTrimSpace("STORAGE_API_URL"),
		StorageAPIKey:      stringsTrimSpace("STORAGE_API_KEY"),
		StorageBucket:      stringsTrimSpace("STORAGE_BUCKET"),
		BlobLocalDir:       stringsTrimSpace("BLOB_LOCAL_DIR"),
		TranscribeProvider: strings.ToLower(envOrDefault("TRANSCRIBE_PROVIDER", "whisper")),
		WhisperAPIURL:      envOrDefault("WHISPER_API_URL", "https://api.openai.com/v1/audio/transcriptions"),
		WhisperModel:       envOrDefault("WHISPER_MODEL", "whisper-1"),
		OpenAIAPIKey:       stringsTrimSpace("OPENAI_API_KEY"),
		SummaryProvider:    strings.ToLower(envOrDefault("SUMMARY_PROVIDER", "local")),
		SummaryAPIURL:      stringsTrimSpace("SUMMARY_API_URL"),
		SummaryAPIBase:     envOrDefault("SUMMARY_API_BASE", "https://api.openai.com/v1"),
		SummaryModel:       envOrDefault("SUMMARY_MODEL", "gpt-4o-mini"),
		JWTSecret:          stringsTrimSpace("JWT_SECRET"),
		ShutdownTimeout:    15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}

	switch cfg.BlobProvider {
	case "supabase":
		if cfg.StorageAPIURL == "" || cfg.StorageAPIKey == "" {
			return Config{}, fmt.Errorf("STORAGE_API_URL and STORAGE_API_KEY are required when BLOB_PROVIDER=supabase")
		}
		if cfg.StorageBucket == "" {
			return Config{}, fmt.Errorf("STORAGE_BUCKET is required when BLOB_PROVIDER=supabase")
		}
	case "local":
		if cfg.BlobLocalDir == "" {
			return Config{}, fmt.Errorf("BLOB_LOCAL_DIR is required when BLOB_PROVIDER=local")
		}
	case "mock":
	default:
		return Config{}, fmt.Errorf("invalid BLOB_PROVIDER: %q (expected supabase|local|mock)", cfg.BlobProvider)
	}

	switch cfg.TranscribeProvider {
	case "whisper":
		if cfg.OpenAIAPIKey == "" {
			return Config{}, fmt.Errorf("OPENAI_API_KEY is required when TRANSCRIBE_PROVIDER=whisper")
		}
	case "mock":
	default:
		return Config{}, fmt.Errorf("invalid TRANSCRIBE_PROVIDER: %q (expected whisper|mock)", cfg.TranscribeProvider)
	}

	switch cfg.SummaryProvider {
	case "local":
		if cfg.OpenAIAPIKey == "" {
			return Config{}, fmt.Errorf("OPENAI_API_KEY is required when SUMMARY_PROVIDER=local")
		}
	case "remote":
		if cfg.SummaryAPIURL == "" {
			return Config{}, fmt.Errorf("SUMMARY_API_URL is required when SUMMARY_PROVIDER=remote")
		}
		if _, err := url.ParseRequestURI(cfg.SummaryAPIURL); err != nil {
			return Config{}, fmt.Errorf("SUMMARY_API_URL parse error: %w", err)
		}
	case "mock":
	default:
		return Config{}, fmt.Errorf("invalid SUMMARY_PROVIDER: %q (expected local|remote|mock)", cfg.SummaryProvider)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	DBMaxConns  int
	JWTSecret   string

	NanoBananaAPIKey      string
	NanoBananaBaseURL     string
	NanoBananaCallbackURL string
	WaveSpeedAPIKey       string
	WaveSpeedBaseURL      string
	ProviderTimeout       time.Duration

	DefaultEnhancementProvider string
	EnhancementPollInterval    time.Duration
	EnhancementMaxPollAttempts int
	EnhancementCompletedGrace  time.Duration
	EnhancementFailedGrace     time.Duration
	ImageSourceAllowPrivate    bool

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	CORSOrigins      []string

	WorkerStaleAfter  time.Duration
	WorkerConcurrency int
	WorkerBatchSize   int
}

// Development reports whether the process runs with local defaults.
func (c *Config) Development() bool {
	return c.AppEnv == "development"
}

// PollHeartbeatGap is the longest a live poll loop goes without rewriting its
// task row: one interval plus one status request.
func (c *Config) PollHeartbeatGap() time.Duration {
	return c.EnhancementPollInterval + c.ProviderTimeout
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 10),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		NanoBananaAPIKey:      os.Getenv("NANOBANANA_API_KEY"),
		NanoBananaBaseURL:     getEnv("NANOBANANA_BASE_URL", "https://api.nanobananaapi.ai"),
		NanoBananaCallbackURL: os.Getenv("NANOBANANA_CALLBACK_URL"),
		WaveSpeedAPIKey:       os.Getenv("WAVESPEED_API_KEY"),
		WaveSpeedBaseURL:      getEnv("WAVESPEED_BASE_URL", "https://api.wavespeed.ai"),
		ProviderTimeout:       time.Second * time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 90)),

		DefaultEnhancementProvider: getEnv("DEFAULT_ENHANCEMENT_PROVIDER", "nanobanana"),
		EnhancementPollInterval:    getEnvDuration("ENHANCEMENT_POLL_INTERVAL_MS", time.Millisecond, 2000),
		EnhancementMaxPollAttempts: getEnvInt("ENHANCEMENT_MAX_POLL_ATTEMPTS", 60),
		EnhancementCompletedGrace:  getEnvDuration("ENHANCEMENT_COMPLETED_GRACE_MS", time.Millisecond, 2000),
		EnhancementFailedGrace:     getEnvDuration("ENHANCEMENT_FAILED_GRACE_MS", time.Millisecond, 3000),
		ImageSourceAllowPrivate:    getEnvBool("IMAGE_SOURCE_ALLOW_PRIVATE", false),

		HTTPReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT_SECONDS", time.Second, 15),
		HTTPWriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT_SECONDS", time.Second, 180),
		HTTPIdleTimeout:  getEnvDuration("HTTP_IDLE_TIMEOUT_SECONDS", time.Second, 60),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSOrigins:      getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		WorkerStaleAfter:  getEnvDuration("WORKER_STALE_AFTER_SECONDS", time.Second, 300),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 4),
		WorkerBatchSize:   getEnvInt("WORKER_BATCH_SIZE", 20),
	}

	if !cfg.Development() {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
	}
	if cfg.EnhancementMaxPollAttempts <= 0 {
		return nil, fmt.Errorf("ENHANCEMENT_MAX_POLL_ATTEMPTS must be positive")
	}
	if gap := cfg.PollHeartbeatGap(); cfg.WorkerStaleAfter <= gap {
		return nil, fmt.Errorf("WORKER_STALE_AFTER_SECONDS (%s) must exceed the poll interval plus provider timeout (%s)", cfg.WorkerStaleAfter, gap)
	}
	if cfg.DBMaxConns <= 0 {
		cfg.DBMaxConns = 10
	}
	if cfg.WorkerConcurrency <= 0 {
		cfg.WorkerConcurrency = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, unit time.Duration, fallback int) time.Duration {
	return unit * time.Duration(getEnvInt(key, fallback))
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

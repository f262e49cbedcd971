package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the full runtime configuration for syncd, loaded from the
// process environment.
type Config struct {
	AppEnv string
	Port   int

	// Master toggles
	SyncEnabled     bool
	ConsumerEnabled bool

	// Scheduler / queue
	SyncInterval      time.Duration
	QueueStream       string
	QueueGroup        string
	DedupWindow       time.Duration
	VisibilityTimeout time.Duration
	SyncWorkers       int

	// Luma provider
	LumaBaseURL          string
	LumaAPIKey           string
	LumaHTTPTimeout      time.Duration
	LumaMaxPageRetries   int
	LumaRateLimitBackoff time.Duration
	LumaPageSize         int

	// Downstream notification refresher
	NotifyRefreshURL string

	// Ops API
	OpsAPIKey string
}

// Load reads configuration from environment variables, applying defaults
// for everything that is safe to default.
func Load() *Config {
	return &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnvInt("PORT", 8080),

		SyncEnabled:     getEnvBool("SYNC_ENABLED", false),
		ConsumerEnabled: getEnvBool("SYNC_CONSUMER_ENABLED", true),

		SyncInterval:      getEnvDuration("SYNC_INTERVAL", 15*time.Minute),
		QueueStream:       getEnv("SYNC_QUEUE_STREAM", "guest:sync"),
		QueueGroup:        getEnv("SYNC_QUEUE_GROUP", "guest-sync-workers"),
		DedupWindow:       getEnvDuration("SYNC_DEDUP_WINDOW", 5*time.Minute),
		VisibilityTimeout: getEnvDuration("SYNC_VISIBILITY_TIMEOUT", 5*time.Minute),
		SyncWorkers:       getEnvInt("SYNC_WORKERS", 3),

		LumaBaseURL:          getEnv("LUMA_BASE_URL", "https://api.lu.ma/public/v1"),
		LumaAPIKey:           os.Getenv("LUMA_API_KEY"),
		LumaHTTPTimeout:      getEnvDuration("LUMA_HTTP_TIMEOUT", 10*time.Second),
		LumaMaxPageRetries:   getEnvInt("LUMA_MAX_PAGE_RETRIES", 3),
		LumaRateLimitBackoff: getEnvDuration("LUMA_RATE_LIMIT_BACKOFF", 2*time.Second),
		LumaPageSize:         getEnvInt("LUMA_PAGE_SIZE", 100),

		NotifyRefreshURL: os.Getenv("NOTIFY_REFRESH_URL"),

		OpsAPIKey: os.Getenv("OPS_API_KEY"),
	}
}

// Validate checks the invariants a running syncd depends on.
func (c *Config) Validate() error {
	if c.SyncWorkers < 1 {
		return fmt.Errorf("SYNC_WORKERS must be at least 1, got %d", c.SyncWorkers)
	}
	if c.SyncInterval < time.Minute {
		return fmt.Errorf("SYNC_INTERVAL must be at least 1m, got %s", c.SyncInterval)
	}
	if c.LumaMaxPageRetries < 0 {
		return fmt.Errorf("LUMA_MAX_PAGE_RETRIES must not be negative, got %d", c.LumaMaxPageRetries)
	}
	if c.QueueStream == "" || c.QueueGroup == "" {
		return fmt.Errorf("SYNC_QUEUE_STREAM and SYNC_QUEUE_GROUP must be set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

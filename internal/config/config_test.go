package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.AppEnv != "development" {
		t.Errorf("Expected development, got %s", cfg.AppEnv)
	}
	if cfg.SyncEnabled {
		t.Error("Expected sync disabled by default")
	}
	if !cfg.ConsumerEnabled {
		t.Error("Expected consumer enabled by default")
	}
	if cfg.SyncInterval != 15*time.Minute {
		t.Errorf("Expected 15m sync interval, got %s", cfg.SyncInterval)
	}
	if cfg.QueueStream != "guest:sync" || cfg.QueueGroup != "guest-sync-workers" {
		t.Errorf("Unexpected queue defaults: %s / %s", cfg.QueueStream, cfg.QueueGroup)
	}
	if cfg.SyncWorkers != 3 {
		t.Errorf("Expected 3 workers, got %d", cfg.SyncWorkers)
	}
	if cfg.LumaBaseURL != "https://api.lu.ma/public/v1" {
		t.Errorf("Unexpected Luma base URL: %s", cfg.LumaBaseURL)
	}
	if cfg.LumaMaxPageRetries != 3 {
		t.Errorf("Expected 3 page retries, got %d", cfg.LumaMaxPageRetries)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SYNC_ENABLED", "true")
	t.Setenv("SYNC_INTERVAL", "30m")
	t.Setenv("SYNC_WORKERS", "5")
	t.Setenv("LUMA_API_KEY", "secret-key")
	t.Setenv("SYNC_DEDUP_WINDOW", "90s")

	cfg := Load()

	if !cfg.SyncEnabled {
		t.Error("Expected sync enabled")
	}
	if cfg.SyncInterval != 30*time.Minute {
		t.Errorf("Expected 30m, got %s", cfg.SyncInterval)
	}
	if cfg.SyncWorkers != 5 {
		t.Errorf("Expected 5 workers, got %d", cfg.SyncWorkers)
	}
	if cfg.LumaAPIKey != "secret-key" {
		t.Errorf("Expected secret-key, got %s", cfg.LumaAPIKey)
	}
	if cfg.DedupWindow != 90*time.Second {
		t.Errorf("Expected 90s, got %s", cfg.DedupWindow)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SYNC_WORKERS", "lots")
	t.Setenv("SYNC_INTERVAL", "soon")
	t.Setenv("SYNC_ENABLED", "yep")

	cfg := Load()

	if cfg.SyncWorkers != 3 {
		t.Errorf("Expected fallback 3, got %d", cfg.SyncWorkers)
	}
	if cfg.SyncInterval != 15*time.Minute {
		t.Errorf("Expected fallback 15m, got %s", cfg.SyncInterval)
	}
	if cfg.SyncEnabled {
		t.Error("Expected fallback false for unparseable bool")
	}
}

func TestValidate(t *testing.T) {
	valid := &Config{
		SyncWorkers:  3,
		SyncInterval: 15 * time.Minute,
		QueueStream:  "guest:sync",
		QueueGroup:   "guest-sync-workers",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero workers", func(c *Config) { c.SyncWorkers = 0 }},
		{"interval too short", func(c *Config) { c.SyncInterval = 10 * time.Second }},
		{"negative retries", func(c *Config) { c.LumaMaxPageRetries = -1 }},
		{"missing stream", func(c *Config) { c.QueueStream = "" }},
		{"missing group", func(c *Config) { c.QueueGroup = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := *valid
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Expected %s to fail validation", tc.name)
			}
		})
	}
}

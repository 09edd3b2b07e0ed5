package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-viewer
api:
  base_url: https://scan.test.example/api/v1
chain:
  id: 97
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-viewer" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-viewer")
	}
	if cfg.API.BaseURL != "https://scan.test.example/api/v1" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Chain.ID != 97 {
		t.Errorf("Chain.ID = %d, want 97", cfg.Chain.ID)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_ARCHIVE_PASSWORD", "secret123")

	yaml := `
instance:
  id: test-viewer
archive:
  enabled: true
  database:
    host: localhost
    name: scanview
    user: viewer
    password: ${TEST_ARCHIVE_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Archive.Database.Password != "secret123" {
		t.Errorf("Password = %q, want %q", cfg.Archive.Database.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "chain:\n  id: 56\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if !strings.HasPrefix(cfg.Instance.ID, "viewer-") {
		t.Errorf("Instance.ID = %q, want generated viewer-<uuid>", cfg.Instance.ID)
	}
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want default", cfg.API.BaseURL)
	}
	if cfg.Poller.FastInterval != 3500*time.Millisecond {
		t.Errorf("FastInterval = %v, want 3.5s", cfg.Poller.FastInterval)
	}
	if cfg.Poller.FullInterval != 9*time.Second {
		t.Errorf("FullInterval = %v, want 9s", cfg.Poller.FullInterval)
	}
	if cfg.View.FastMissThreshold != 4 || cfg.View.FullMissThreshold != 3 {
		t.Errorf("miss thresholds = (%d, %d), want (4, 3)",
			cfg.View.FastMissThreshold, cfg.View.FullMissThreshold)
	}
	if cfg.View.StaleThreshold != 30*time.Second {
		t.Errorf("StaleThreshold = %v, want 30s", cfg.View.StaleThreshold)
	}
	if cfg.View.FingerprintCap != 250 {
		t.Errorf("FingerprintCap = %d, want 250", cfg.View.FingerprintCap)
	}
	if cfg.Archive.Enabled {
		t.Error("archive should be disabled by default")
	}
}

func TestLoadAndValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		path := writeTempFile(t, "chain:\n  id: 56\n")
		if _, err := LoadAndValidate(path); err != nil {
			t.Errorf("LoadAndValidate failed: %v", err)
		}
	})

	t.Run("archive missing database", func(t *testing.T) {
		path := writeTempFile(t, "archive:\n  enabled: true\n")
		if _, err := LoadAndValidate(path); err == nil {
			t.Error("expected validation error for archive without database")
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *ViewerConfig {
		cfg := &ViewerConfig{}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*ViewerConfig)
		wantErr string
	}{
		{"defaults pass", func(c *ViewerConfig) {}, ""},
		{"missing instance id", func(c *ViewerConfig) { c.Instance.ID = "" }, "instance.id"},
		{"missing base url", func(c *ViewerConfig) { c.API.BaseURL = "" }, "api.base_url"},
		{"bad chain id", func(c *ViewerConfig) { c.Chain.ID = 0 }, "chain.id"},
		{"full faster than fast", func(c *ViewerConfig) { c.Poller.FullInterval = time.Second }, "full_interval"},
		{"zero empty streak", func(c *ViewerConfig) { c.Poller.EmptyStreak = -1 }, "empty_streak"},
		{"zero miss threshold", func(c *ViewerConfig) { c.View.FastMissThreshold = 0 }, "fast_miss_threshold"},
		{"bad port", func(c *ViewerConfig) { c.Server.Port = 70000 }, "server.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

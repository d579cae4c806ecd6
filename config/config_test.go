package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.NATS.Embedded {
		t.Error("expected embedded NATS by default")
	}
	if cfg.NATS.GetTimeout() != 5*time.Second {
		t.Errorf("expected default timeout 5s, got %s", cfg.NATS.GetTimeout())
	}
	if cfg.Gifts.GetWatchDebounce() != 500*time.Millisecond {
		t.Errorf("expected default debounce 500ms, got %s", cfg.Gifts.GetWatchDebounce())
	}
	if cfg.Roster.Bucket != "RECOVERY_ROSTERS" {
		t.Errorf("expected default bucket RECOVERY_ROSTERS, got %s", cfg.Roster.Bucket)
	}
	if cfg.Roster.Key != "roster" {
		t.Errorf("expected default roster key, got %s", cfg.Roster.Key)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing bucket",
			modify:  func(c *Config) { c.Roster.Bucket = "" },
			wantErr: true,
		},
		{
			name:    "missing roster key",
			modify:  func(c *Config) { c.Roster.Key = "" },
			wantErr: true,
		},
		{
			name:    "malformed timeout",
			modify:  func(c *Config) { c.NATS.Timeout = "five seconds" },
			wantErr: true,
		},
		{
			name:    "malformed debounce",
			modify:  func(c *Config) { c.Gifts.WatchDebounce = "soon" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	other := &Config{}
	other.NATS.URL = "nats://localhost:4222"
	other.Roster.Key = "roster-42"

	base.Merge(other)

	if base.NATS.URL != "nats://localhost:4222" {
		t.Errorf("expected merged URL, got %s", base.NATS.URL)
	}
	if base.NATS.Embedded {
		t.Error("setting an external URL must disable embedded mode")
	}
	if base.Roster.Key != "roster-42" {
		t.Errorf("expected merged roster key, got %s", base.Roster.Key)
	}
	// Untouched fields keep their defaults.
	if base.Roster.Bucket != "RECOVERY_ROSTERS" {
		t.Errorf("bucket should keep default, got %s", base.Roster.Bucket)
	}
	if base.NATS.Timeout != "5s" {
		t.Errorf("timeout should keep default, got %s", base.NATS.Timeout)
	}
}

func TestConfigMergeNil(t *testing.T) {
	base := DefaultConfig()
	base.Merge(nil)
	if base.Roster.Bucket != "RECOVERY_ROSTERS" {
		t.Error("merge with nil must not change anything")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
nats:
  url: nats://remote:4222
  timeout: 2s
roster:
  key: roster-abc
gifts:
  feed_path: /var/feeds/orders.json
metrics:
  addr: :9102
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.NATS.URL != "nats://remote:4222" {
		t.Errorf("unexpected URL: %s", cfg.NATS.URL)
	}
	if cfg.NATS.GetTimeout() != 2*time.Second {
		t.Errorf("unexpected timeout: %s", cfg.NATS.GetTimeout())
	}
	if cfg.Roster.Key != "roster-abc" {
		t.Errorf("unexpected roster key: %s", cfg.Roster.Key)
	}
	if cfg.Gifts.FeedPath != "/var/feeds/orders.json" {
		t.Errorf("unexpected feed path: %s", cfg.Gifts.FeedPath)
	}
	if cfg.Metrics.Addr != ":9102" {
		t.Errorf("unexpected metrics addr: %s", cfg.Metrics.Addr)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.NATS.URL = "nats://saved:4222"
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if loaded.NATS.URL != "nats://saved:4222" {
		t.Errorf("round trip lost URL: %s", loaded.NATS.URL)
	}
}

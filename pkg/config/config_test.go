package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".syncpanel.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvPrefix+"_CONFIG_PATH", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvPrefix+"_CONFIG_PATH", t.TempDir())
	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Address != "127.0.0.1:8888" {
		t.Fatalf("unexpected address %q", cfg.Address)
	}
	if cfg.Interval != time.Second || cfg.Timeout != 10*time.Second {
		t.Fatalf("unexpected durations %v %v", cfg.Interval, cfg.Timeout)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unexpected log level %q", cfg.LogLevel)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	writeConfig(t, `
address: 10.0.0.2:9000
username: admin
interval: 5s
log:
  level: debug
metrics:
  addr: :9100
`)
	t.Setenv("SYNCPANEL_USERNAME", "override")

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Address != "10.0.0.2:9000" || cfg.Username != "override" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Interval != 5*time.Second || cfg.LogLevel != "debug" || cfg.MetricsAddr != ":9100" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if got := cfg.API(); got.Address != cfg.Address || got.Timeout != 10*time.Second {
		t.Fatalf("unexpected api config %+v", got)
	}
}

func TestLoadRejectsBadInterval(t *testing.T) {
	writeConfig(t, "interval: 0s\n")
	if _, err := Load(viper.New()); err == nil {
		t.Fatal("expected error for zero interval")
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	writeConfig(t, "address: [unterminated\n")
	if _, err := Load(viper.New()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestWatchAppliesChanges(t *testing.T) {
	dir := writeConfig(t, "interval: 1s\n")
	v := viper.New()
	if _, err := Load(v); err != nil {
		t.Fatalf("load: %v", err)
	}

	applied := make(chan *Config, 4)
	Watch(v, func(cfg *Config) { applied <- cfg })

	if err := os.WriteFile(filepath.Join(dir, ".syncpanel.yaml"), []byte("interval: 3s\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case cfg := <-applied:
			if cfg.Interval == 3*time.Second {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for config reload")
		}
	}
}

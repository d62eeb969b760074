package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Server.BaseURL == "" {
		t.Error("default base URL must not be empty")
	}
	if cfg.Server.Timeout != 10*time.Second {
		t.Errorf("default timeout = %v, want 10s", cfg.Server.Timeout)
	}
	if cfg.Auth.Mode != "both" {
		t.Errorf("default auth mode = %q, want both", cfg.Auth.Mode)
	}
	if cfg.Session.RecheckInterval != 2*time.Second {
		t.Errorf("default recheck interval = %v, want 2s", cfg.Session.RecheckInterval)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
	if cfg.Auth.Mode != "both" {
		t.Errorf("auth mode = %q, want default", cfg.Auth.Mode)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yaml := `
server:
  base_url: "http://192.168.0.15:5025/api"
  timeout: 5s
auth:
  mode: token
session:
  dir: /tmp/garage-test
  recheck_interval: 500ms
log:
  level: debug
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.BaseURL != "http://192.168.0.15:5025/api" {
		t.Errorf("base URL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.Server.Timeout)
	}
	if cfg.Auth.Mode != "token" {
		t.Errorf("auth mode = %q, want token", cfg.Auth.Mode)
	}
	if cfg.Session.RecheckInterval != 500*time.Millisecond {
		t.Errorf("recheck interval = %v, want 500ms", cfg.Session.RecheckInterval)
	}
	if got, err := cfg.SessionDir(); err != nil || got != "/tmp/garage-test" {
		t.Errorf("SessionDir() = %q, %v", got, err)
	}
}

func TestLoadPartialFileKeepsOtherDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("auth:\n  mode: cookie\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.Mode != "cookie" {
		t.Errorf("auth mode = %q, want cookie", cfg.Auth.Mode)
	}
	if cfg.Server.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want default 10s", cfg.Server.Timeout)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("server: [broken"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(cfgPath); err == nil {
		t.Error("malformed config must error")
	}
}

func TestLogFileDefaultsNextToSessionDir(t *testing.T) {
	cfg := Default()
	cfg.Session.Dir = "/tmp/garage-test"

	got, err := cfg.LogFile()
	if err != nil {
		t.Fatalf("LogFile: %v", err)
	}
	want := filepath.Join("/tmp/garage-test", "garage-tui.log")
	if got != want {
		t.Errorf("LogFile() = %q, want %q", got, want)
	}
}

// Package config loads the client configuration from an optional YAML
// file, filling in defaults for anything the file leaves out.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type AuthConfig struct {
	// Mode is "token", "cookie" or "both". The backend's auth scheme is
	// decided here once, not probed per request.
	Mode string `yaml:"mode"`
}

type SessionConfig struct {
	// Dir holds the persisted session; empty means a "garage-tui"
	// directory under the user config dir.
	Dir             string        `yaml:"dir"`
	RecheckInterval time.Duration `yaml:"recheck_interval"`
}

type LogConfig struct {
	// File receives the diagnostic log; the terminal belongs to the UI.
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://127.0.0.1:5025/api",
			Timeout: 10 * time.Second,
		},
		Auth: AuthConfig{Mode: "both"},
		Session: SessionConfig{
			RecheckInterval: 2 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is not an error;
// a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// SessionDir resolves the session directory, falling back to the user
// config dir when unset.
func (c *Config) SessionDir() (string, error) {
	if c.Session.Dir != "" {
		return c.Session.Dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "garage-tui"), nil
}

// LogFile resolves the log path, defaulting next to the session data.
func (c *Config) LogFile() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := c.SessionDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "garage-tui.log"), nil
}

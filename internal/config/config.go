// Package config holds workspace settings read from <workspace>/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const FileName = "config.yaml"

type Config struct {
	Reorder ReorderConfig `yaml:"reorder" json:"reorder"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Remote  RemoteConfig  `yaml:"remote" json:"remote"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

type ReorderConfig struct {
	// UndoWindow is how long a saved reorder can be undone (Go duration, e.g. "5s").
	UndoWindow string `yaml:"undo_window" json:"undoWindow"`
	// PersistTimeout bounds a single order write.
	PersistTimeout string `yaml:"persist_timeout" json:"persistTimeout"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
	// Actor is used for requests that carry no X-Wishlist-Actor header.
	Actor string `yaml:"actor,omitempty" json:"actor,omitempty"`
}

type RemoteConfig struct {
	// URL of a `wishlist serve` instance; empty means the local workspace.
	URL     string `yaml:"url,omitempty" json:"url,omitempty"`
	Timeout string `yaml:"timeout" json:"timeout"`
}

type LoggingConfig struct {
	Level       string `yaml:"level" json:"level"`
	Development bool   `yaml:"development" json:"development"`
	// File receives logs instead of stderr (the gallery always logs to a file or nowhere).
	File string `yaml:"file,omitempty" json:"file,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Reorder: ReorderConfig{
			UndoWindow:     "5s",
			PersistTimeout: "10s",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:7410",
		},
		Remote: RemoteConfig{
			Timeout: "10s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Path returns the config file path inside a workspace directory.
func Path(workspaceDir string) string {
	return filepath.Join(workspaceDir, FileName)
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("WISHLIST_SERVER_ADDR")); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("WISHLIST_REMOTE_URL")); v != "" {
		c.Remote.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("WISHLIST_UNDO_WINDOW")); v != "" {
		c.Reorder.UndoWindow = v
	}
	if v := strings.TrimSpace(os.Getenv("WISHLIST_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("WISHLIST_LOG_FILE")); v != "" {
		c.Logging.File = v
	}
}

// Validate rejects unparsable durations.
func (c *Config) Validate() error {
	for name, v := range map[string]string{
		"reorder.undo_window":     c.Reorder.UndoWindow,
		"reorder.persist_timeout": c.Reorder.PersistTimeout,
		"remote.timeout":          c.Remote.Timeout,
	} {
		if strings.TrimSpace(v) == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid %s %q: must be positive", name, v)
		}
	}
	return nil
}

// GetUndoWindow returns the undo window as a duration.
func (c *Config) GetUndoWindow() time.Duration {
	return parseOr(c.Reorder.UndoWindow, 5*time.Second)
}

// GetPersistTimeout returns the order-write timeout as a duration.
func (c *Config) GetPersistTimeout() time.Duration {
	return parseOr(c.Reorder.PersistTimeout, 10*time.Second)
}

// GetRemoteTimeout returns the HTTP client timeout as a duration.
func (c *Config) GetRemoteTimeout() time.Duration {
	return parseOr(c.Remote.Timeout, 10*time.Second)
}

func parseOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

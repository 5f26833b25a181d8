// Package config provides YAML-based configuration loading for Mindwell.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Mindwell configuration, loaded from mindwell.yaml.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Cache     CacheConfig     `yaml:"cache"`
	Storage   StorageConfig   `yaml:"storage"`
	Watch     WatchConfig     `yaml:"watch"`
	DevServer DevServerConfig `yaml:"devserver"`
}

// ServerConfig holds connection settings for the counseling backend.
type ServerConfig struct {
	BaseURL            string `yaml:"base_url"`
	TimeoutSec         int    `yaml:"timeout_sec"`
	ResourceTimeoutSec int    `yaml:"resource_timeout_sec"`
}

// CacheConfig controls the session-history cache window.
type CacheConfig struct {
	TTLSec int `yaml:"ttl_sec"`
}

// StorageConfig locates the local durable key-value store.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// WatchConfig controls the background refresh loop. Cron takes precedence
// over IntervalSec when both are set.
type WatchConfig struct {
	IntervalSec int    `yaml:"interval_sec"`
	Cron        string `yaml:"cron"`
}

// DevServerConfig holds settings for the local development backend.
type DevServerConfig struct {
	Port     int    `yaml:"port"`
	Driver   string `yaml:"driver"`   // sqlite (default) or mysql
	Database string `yaml:"database"` // sqlite path or mysql DSN
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.TimeoutSec == 0 {
		c.Server.TimeoutSec = 30
	}
	if c.Server.ResourceTimeoutSec == 0 {
		c.Server.ResourceTimeoutSec = c.Server.TimeoutSec * 2
	}
	if c.Cache.TTLSec == 0 {
		c.Cache.TTLSec = 300
	}
	if c.Storage.Path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			c.Storage.Path = filepath.Join(home, ".mindwell", "data")
		}
	}
	if c.Watch.IntervalSec == 0 && c.Watch.Cron == "" {
		c.Watch.IntervalSec = 900
	}
	if c.DevServer.Port == 0 {
		c.DevServer.Port = 8080
	}
	if c.DevServer.Driver == "" {
		c.DevServer.Driver = "sqlite"
	}
	if c.DevServer.Database == "" && c.DevServer.Driver == "sqlite" {
		c.DevServer.Database = "mindwell-dev.db"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Server.BaseURL == "" {
		errs = append(errs, "server.base_url is required")
	}
	if !strings.HasPrefix(c.Server.BaseURL, "http://") && !strings.HasPrefix(c.Server.BaseURL, "https://") {
		errs = append(errs, "server.base_url must start with http:// or https://")
	}
	if c.Server.TimeoutSec < 0 {
		errs = append(errs, "server.timeout_sec must not be negative")
	}
	if c.Cache.TTLSec < 0 {
		errs = append(errs, "cache.ttl_sec must not be negative")
	}
	switch c.DevServer.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("devserver.driver %q is not supported (want sqlite or mysql)", c.DevServer.Driver))
	}
	if c.DevServer.Driver == "mysql" && c.DevServer.Database == "" {
		errs = append(errs, "devserver.database is required for the mysql driver")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config represents the daemon configuration.
type Config struct {
	// HTTP control API listen address
	Addr string `json:"addr"`

	// Directory holding route.json and its backup
	DataDir string `json:"data_dir"`

	LogLevel   string `json:"log_level"`
	SilentMode bool   `json:"silent_mode"`

	// Link monitor settings
	MonitorInterval  time.Duration `json:"monitor_interval"`
	ProbeConcurrency int           `json:"probe_concurrency"`

	// Interface name prefixes treated as cellular uplinks
	CellularPrefixes []string `json:"cellular_prefixes"`
}

// NewDefaultConfig creates a new config with default values
func NewDefaultConfig() *Config {
	return &Config{
		Addr:             "127.0.0.1:8799",
		DataDir:          "/var/lib/sanji/route",
		LogLevel:         "info",
		MonitorInterval:  2 * time.Second,
		ProbeConcurrency: 8,
		CellularPrefixes: []string{"ppp", "wwan"},
	}
}

// LoadConfig loads the configuration from a JSON file. An empty path
// returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}

	if c.MonitorInterval < 100*time.Millisecond {
		return fmt.Errorf("monitor interval too small: %v", c.MonitorInterval)
	}

	if c.ProbeConcurrency < 1 {
		return fmt.Errorf("probe concurrency must be at least 1, got %d", c.ProbeConcurrency)
	}

	return nil
}

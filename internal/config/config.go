// Package config holds seqqc runtime configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the config file used when --config is not given.
const EnvConfigPath = "SEQQC_CONFIG"

// Config holds configuration shared by every seqqc command.
type Config struct {
	LogLevel     string        `yaml:"log_level"`     // debug, info, warn, error
	LogFormat    string        `yaml:"log_format"`    // text, json
	HistoryDB    string        `yaml:"history_db"`    // SQLite path for the invocation history; empty disables it
	StageTimeout time.Duration `yaml:"stage_timeout"` // Per-process bound; 0 means unbounded
	StrictLogs   bool          `yaml:"strict_logs"`   // Reject malformed cutadapt logs instead of warning
	StrictCopy   bool          `yaml:"strict_copy"`   // Fail when an auxiliary log copy fails
	AssetsDir    string        `yaml:"assets_dir"`    // On-disk template override; empty uses the embedded set
	TempDir      string        `yaml:"temp_dir"`      // Parent for scratch directories (default os.TempDir())
	Addr         string        `yaml:"addr"`          // Listen address for `seqqc view`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Addr:      ":8080",
	}
}

// Load reads a YAML config file on top of DefaultConfig.
// An empty path falls back to $SEQQC_CONFIG; if that is unset too the defaults are returned.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	var errs []error
	switch c.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format %q: want text or json", c.LogFormat))
	}
	if c.StageTimeout < 0 {
		errs = append(errs, fmt.Errorf("stage_timeout %s: must not be negative", c.StageTimeout))
	}
	if c.AssetsDir != "" {
		info, err := os.Stat(c.AssetsDir)
		if err != nil {
			errs = append(errs, fmt.Errorf("assets_dir: %w", err))
		} else if !info.IsDir() {
			errs = append(errs, fmt.Errorf("assets_dir %s: not a directory", c.AssetsDir))
		}
	}
	return errors.Join(errs...)
}

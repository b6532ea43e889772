// Package config provides configuration management for histwipe.
//
// This file contains config loading functionality including:
// - XDG config path detection
// - TOML file parsing
// - Environment variable overrides
// - Validation
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// DetectConfigPath searches for a config file using XDG standard paths.
// Returns the first config file found, or empty string if none exists.
//
// Search order:
// 1. ~/.config/histwipe/config.toml
//
// Returns empty string if no config file is found (caller should use defaults).
func DetectConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	configPath := filepath.Join(homeDir, ".config", "histwipe", "config.toml")
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}

	return ""
}

// Load loads a config from the specified path.
// If the file doesn't exist, returns an error.
// After loading, applies environment variable overrides and validates.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Start with defaults so absent keys keep their default values.
	cfg := DefaultConfig()

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	expandPath(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults attempts to load a config from XDG standard paths.
// If no config file is found, returns a config with all default values.
// If a config file is found but fails to load/validate, returns an error.
func LoadWithDefaults() (*Config, error) {
	configPath := DetectConfigPath()
	if configPath == "" {
		cfg := DefaultConfig()
		applyEnvOverrides(cfg)
		expandPath(cfg)
		return cfg, nil
	}

	return Load(configPath)
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables follow the pattern: HISTWIPE_<SECTION>_<FIELD>
//
// Examples:
// - HISTWIPE_HISTORY_FILE overrides [history].file
// - HISTWIPE_SHRED_PASSES overrides [shred].passes
// - HISTWIPE_OUTPUT_FORMAT overrides [output].format
//
// Boolean fields: use "true"/"false" strings
func applyEnvOverrides(c *Config) {
	// Helper to lookup and apply string override
	applyString := func(key string, target *string) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			*target = val
		}
	}

	// Helper to lookup and apply bool override
	applyBool := func(key string, target *bool) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			switch strings.ToLower(val) {
			case "true", "1", "yes", "on":
				*target = true
			case "false", "0", "no", "off":
				*target = false
			}
		}
	}

	// Helper to lookup and apply int override
	applyInt := func(key string, target *int) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			var i int
			if _, err := fmt.Sscanf(val, "%d", &i); err == nil {
				*target = i
			}
		}
	}

	// History section
	applyString("HISTWIPE_HISTORY_FILE", &c.History.File)

	// Shred section
	applyInt("HISTWIPE_SHRED_PASSES", &c.Shred.Passes)

	// Output section
	applyString("HISTWIPE_OUTPUT_FORMAT", &c.Output.Format)
	applyString("HISTWIPE_OUTPUT_COLOR", &c.Output.Color)

	// Safety section
	applyBool("HISTWIPE_SAFETY_BACKUP", &c.Safety.Backup)
	applyBool("HISTWIPE_SAFETY_REQUIRE_CONFIRM", &c.Safety.RequireConfirm)
}

// expandPath expands ~ to the home directory in the history file path.
func expandPath(c *Config) {
	if strings.HasPrefix(c.History.File, "~/") || c.History.File == "~" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			c.History.File = filepath.Join(homeDir, strings.TrimPrefix(c.History.File, "~/"))
		}
	}
}

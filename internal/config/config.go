// Package config provides configuration management for histwipe.
//
// The configuration is stored in TOML format and supports validation
// and default values for all fields.
package config

import (
	"fmt"

	"github.com/chazuruo/histwipe/internal/history"
	"github.com/chazuruo/histwipe/internal/report"
	"github.com/chazuruo/histwipe/internal/shred"
)

// Config is the top-level configuration struct for histwipe.
// It contains all configuration sections as embedded structs.
type Config struct {
	History HistoryConfig `toml:"history"`
	Shred   ShredConfig   `toml:"shred"`
	Output  OutputConfig  `toml:"output"`
	Safety  SafetyConfig  `toml:"safety"`
}

// HistoryConfig contains history file settings.
type HistoryConfig struct {
	// File is the history file to clean. When empty, the $HISTFILE
	// environment variable is consulted at run time, then the usual
	// zsh locations under the home directory.
	File string `toml:"file"`
}

// ShredConfig contains secure deletion settings.
type ShredConfig struct {
	// Passes is the number of random overwrite passes applied to the
	// original file before it is unlinked.
	Passes int `toml:"passes"`
}

// OutputConfig contains output rendering settings.
type OutputConfig struct {
	// Format is the report output format.
	// Valid values: "table", "plain", "json", "yaml".
	Format string `toml:"format"`

	// Color controls colored terminal output.
	// Valid values: "auto", "always", "never".
	Color string `toml:"color"`
}

// SafetyConfig contains settings that guard against accidental loss.
type SafetyConfig struct {
	// Backup controls whether a backup copy is taken by default before
	// the original file is destroyed.
	Backup bool `toml:"backup"`

	// RequireConfirm controls whether a destructive run prompts for
	// confirmation when not explicitly bypassed.
	RequireConfirm bool `toml:"require_confirm"`
}

// DefaultConfig returns a Config with all default values set.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			File: "",
		},
		Shred: ShredConfig{
			Passes: shred.DefaultPasses,
		},
		Output: OutputConfig{
			Format: "table",
			Color:  "auto",
		},
		Safety: SafetyConfig{
			Backup:         true,
			RequireConfirm: true,
		},
	}
}

// Validate checks the configuration for valid values.
// Returns a nil error if the config is valid, or an error describing the problem.
func (c *Config) Validate() error {
	if c.Shred.Passes < 1 {
		return fmt.Errorf("shred.passes must be >= 1; got %d", c.Shred.Passes)
	}

	if !report.ValidFormat(c.Output.Format) {
		return fmt.Errorf("output.format must be one of: table, plain, json, yaml; got %q", c.Output.Format)
	}
	validColorModes := map[string]bool{
		"auto":   true,
		"always": true,
		"never":  true,
	}
	if !validColorModes[c.Output.Color] {
		return fmt.Errorf("output.color must be one of: auto, always, never; got %q", c.Output.Color)
	}

	return nil
}

// HistoryPath returns the configured history file, falling back to the
// shell's own default when unset.
func (c *Config) HistoryPath() string {
	if c.History.File != "" {
		return c.History.File
	}
	return history.DefaultPath()
}

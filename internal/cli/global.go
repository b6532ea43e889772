// Package cli provides Cobra command definitions for histwipe.
package cli

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chazuruo/histwipe/internal/config"
)

var (
	// ConfigPath overrides the config file location.
	// Set by the global --config flag.
	ConfigPath string

	// NoInput disables all prompting. Commands that would ask a
	// question fail instead. Set by the global --no-input flag.
	NoInput bool

	// Verbose raises the log level to debug.
	// Set by the global --verbose flag.
	Verbose bool
)

// AddGlobalFlags adds the global flags to the root command.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&ConfigPath, "config", "",
		"config file path (default ~/.config/histwipe/config.toml)")
	cmd.PersistentFlags().BoolVar(&NoInput, "no-input", false,
		"never prompt; fail instead of asking questions")
	cmd.PersistentFlags().BoolVar(&Verbose, "verbose", false,
		"enable debug logging")
}

// Interactive reports whether prompting is allowed: stdin must be a
// terminal and --no-input must not be set.
func Interactive() bool {
	if NoInput {
		return false
	}
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// NewLogger builds the console logger shared by all commands. Logs go
// to stderr so report output on stdout stays machine-readable.
func NewLogger() *zap.Logger {
	level := zapcore.InfoLevel
	if Verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

// loadConfig loads the config honoring the global --config flag.
func loadConfig() (*config.Config, error) {
	if ConfigPath != "" {
		return config.Load(ConfigPath)
	}
	return config.LoadWithDefaults()
}

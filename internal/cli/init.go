package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/chazuruo/histwipe/internal/config"
	"github.com/chazuruo/histwipe/internal/report"
)

// InitOptions contains the options for the init command.
type InitOptions struct {
	Force bool

	// Flag values for --no-input mode.
	Passes int
	Backup bool
	Format string
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a histwipe config file with your defaults",
		Long: `Write ~/.config/histwipe/config.toml seeded with defaults.

Interactively asks for the overwrite pass count, whether backups are
taken by default, and the report format. With --no-input the flags (or
their defaults) are written directly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing config file")
	cmd.Flags().IntVar(&opts.Passes, "passes", 32, "default overwrite pass count")
	cmd.Flags().BoolVar(&opts.Backup, "backup", true, "take a backup by default")
	cmd.Flags().StringVar(&opts.Format, "format", "table", "default report format (table, plain, json, yaml)")

	return cmd
}

func runInit(opts *InitOptions) error {
	path := ConfigPath
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".config", "histwipe", "config.toml")
	}

	if _, err := os.Stat(path); err == nil && !opts.Force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	cfg.Shred.Passes = opts.Passes
	cfg.Safety.Backup = opts.Backup
	cfg.Output.Format = opts.Format

	if Interactive() {
		if err := initForm(cfg); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := config.Write(path, cfg); err != nil {
		return err
	}

	fmt.Println(success("✓ configuration written"))
	fmt.Printf("  %s\n", path)
	return nil
}

// initForm asks for the handful of settings worth choosing up front.
func initForm(cfg *config.Config) error {
	passes := strconv.Itoa(cfg.Shred.Passes)

	formats := make([]huh.Option[string], 0, 4)
	for _, f := range report.Formats() {
		formats = append(formats, huh.NewOption(f, f))
	}

	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Overwrite passes").
			Description("Random-data passes over the original file during cleaning").
			Validate(func(s string) error {
				n, err := strconv.Atoi(strings.TrimSpace(s))
				if err != nil || n < 1 {
					return fmt.Errorf("enter a number >= 1")
				}
				return nil
			}).
			Value(&passes),
		huh.NewConfirm().
			Title("Take a backup by default before destroying the original?").
			Value(&cfg.Safety.Backup),
		huh.NewSelect[string]().
			Title("Report format").
			Options(formats...).
			Value(&cfg.Output.Format),
	)).Run()
	if err != nil {
		return fmt.Errorf("form error: %w", err)
	}

	cfg.Shred.Passes, _ = strconv.Atoi(strings.TrimSpace(passes))
	return nil
}

package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/chazuruo/histwipe/internal/cleaner"
	"github.com/chazuruo/histwipe/internal/errors"
	"github.com/chazuruo/histwipe/internal/filter"
	"github.com/chazuruo/histwipe/internal/interrupt"
	"github.com/chazuruo/histwipe/internal/report"
	"github.com/chazuruo/histwipe/internal/window"
)

// CleanOptions contains the options for the clean command.
type CleanOptions struct {
	Mode      string
	Date      string
	StartDate string
	EndDate   string
	Days      int
	Precise   bool
	Keywords  []string
	Regexes   []string
	Backup    bool
	DryRun    bool
	HistFile  string
	Passes    int
	Format    string
	Yes       bool
}

// NewCleanCommand creates the clean command.
func NewCleanCommand() *cobra.Command {
	opts := &CleanOptions{}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove history entries in a time window and shred the original file",
		Long: `Remove zsh history entries whose timestamp falls in the selected time
window, optionally narrowed by keyword or regex filters, then securely
overwrite the original file before replacing it.

Modes and their required flags:
  today, last_7_days, last_30_days, all    (no extra flags)
  specific_day, before, after              --date
  between                                  --start-date and --end-date
  older_than, newer_than                   --days

Dates accept YYYY-MM-DD, optionally followed by HH:MM or HH:MM:SS.
With --precise, a time component is required and dates match to the
second instead of expanding to whole days.

Examples:
  histwipe clean --mode today --yes
  histwipe clean --mode between --start-date 2024-01-01 --end-date 2024-01-31 --dry-run
  histwipe clean --mode all --keyword "vault login" --keyword "export AWS" --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "",
		"time window mode (today, last_7_days, last_30_days, specific_day, between, before, after, older_than, newer_than, all)")
	cmd.Flags().StringVar(&opts.Date, "date", "", "date for specific_day, before and after")
	cmd.Flags().StringVar(&opts.StartDate, "start-date", "", "start date for between")
	cmd.Flags().StringVar(&opts.EndDate, "end-date", "", "end date for between")
	cmd.Flags().IntVar(&opts.Days, "days", 0, "day count for older_than and newer_than")
	cmd.Flags().BoolVar(&opts.Precise, "precise", false, "match dates to the second instead of whole days")
	cmd.Flags().StringArrayVar(&opts.Keywords, "keyword", nil, "only delete commands containing this substring (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Regexes, "regex", nil, "only delete commands matching this regex (repeatable)")
	cmd.Flags().BoolVar(&opts.Backup, "backup", false, "copy the original aside before destroying it")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report what would be deleted without touching the file")
	cmd.Flags().StringVar(&opts.HistFile, "histfile", "", "history file to clean (default $HISTFILE, else ~/.zsh_history)")
	cmd.Flags().IntVar(&opts.Passes, "passes", 0, "overwrite pass count for the secure delete")
	cmd.Flags().StringVar(&opts.Format, "format", "", "report format (table, plain, json, yaml)")
	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "skip the confirmation prompt")

	return cmd
}

func runClean(cmd *cobra.Command, opts *CleanOptions) error {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyColorMode(cfg.Output.Color)

	mode, err := window.ParseMode(opts.Mode)
	if err != nil {
		if opts.Mode == "" {
			return errors.Wrap(errors.ErrInvalid, "--mode is required")
		}
		return fmt.Errorf("unknown mode %q: %w", opts.Mode, errors.ErrInvalid)
	}
	if err := validateModeInputs(mode, opts); err != nil {
		return err
	}

	filters, err := filter.Compile(opts.Keywords, opts.Regexes)
	if err != nil {
		return err
	}

	format := opts.Format
	if format == "" {
		format = cfg.Output.Format
	}
	if !report.ValidFormat(format) {
		return fmt.Errorf("unsupported format %q: %w", format, errors.ErrInvalid)
	}

	path := opts.HistFile
	if path == "" {
		path = cfg.HistoryPath()
	}
	path = resolvePath(path, logger)
	if err := preflight(path); err != nil {
		return err
	}

	backup := opts.Backup
	if !cmd.Flags().Changed("backup") {
		backup = cfg.Safety.Backup
	}
	if backup && opts.DryRun {
		logger.Info("dry run requested, backup will not be taken")
		backup = false
	}

	passes := opts.Passes
	if passes == 0 {
		passes = cfg.Shred.Passes
	}
	if passes < 1 {
		return errors.Wrap(errors.ErrInvalid, "--passes must be >= 1")
	}

	if !opts.DryRun && !opts.Yes && cfg.Safety.RequireConfirm {
		ok, err := confirmClean(path, mode, filters, backup)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println(dim("aborted, history file untouched"))
			return nil
		}
	}

	flag := interrupt.NewFlag()
	stop := interrupt.Install(flag, logger)
	defer stop()

	c := cleaner.New(cleaner.Options{
		Path: path,
		Mode: mode,
		Inputs: window.Inputs{
			Date:      opts.Date,
			StartDate: opts.StartDate,
			EndDate:   opts.EndDate,
			Days:      opts.Days,
			Precise:   opts.Precise,
		},
		Filters: filters,
		DryRun:  opts.DryRun,
		Backup:  backup,
		Passes:  passes,
	}, logger, flag)

	res, err := c.Run()
	if err != nil {
		return err
	}

	return renderResult(res, format)
}

// validateModeInputs enforces the per-mode flag combinations: each mode
// requires exactly the inputs it consumes and rejects the rest, so a
// stray --date on --mode today fails loudly instead of being ignored.
func validateModeInputs(mode window.Mode, opts *CleanOptions) error {
	var required, forbidden []string
	has := map[string]bool{
		"--date":       opts.Date != "",
		"--start-date": opts.StartDate != "",
		"--end-date":   opts.EndDate != "",
		"--days":       opts.Days != 0,
		"--precise":    opts.Precise,
	}

	switch mode {
	case window.ModeSpecificDay, window.ModeBefore, window.ModeAfter:
		required = []string{"--date"}
		forbidden = []string{"--start-date", "--end-date", "--days"}
	case window.ModeBetween:
		required = []string{"--start-date", "--end-date"}
		forbidden = []string{"--date", "--days"}
	case window.ModeOlderThan, window.ModeNewerThan:
		required = []string{"--days"}
		forbidden = []string{"--date", "--start-date", "--end-date", "--precise"}
	default:
		forbidden = []string{"--date", "--start-date", "--end-date", "--days", "--precise"}
	}

	for _, f := range required {
		if !has[f] {
			return fmt.Errorf("mode %s requires %s: %w", mode, f, errors.ErrInvalid)
		}
	}
	for _, f := range forbidden {
		if has[f] {
			return fmt.Errorf("mode %s does not accept %s: %w", mode, f, errors.ErrInvalid)
		}
	}
	if opts.Days < 0 {
		return errors.Wrap(errors.ErrInvalid, "--days must be positive")
	}
	return nil
}

// confirmClean asks for the final go-ahead before a destructive run.
func confirmClean(path string, mode window.Mode, filters filter.Set, backup bool) (bool, error) {
	if !Interactive() {
		return false, errors.Wrap(errors.ErrInvalid,
			"refusing to modify the history file without confirmation; pass --yes or set safety.require_confirm = false")
	}

	fmt.Println(header("histwipe"))
	fmt.Printf("  file:   %s\n", path)
	fmt.Printf("  mode:   %s\n", mode)
	if !filters.Empty() {
		fmt.Printf("  filter: %d keyword(s), %d regex(es)\n", len(filters.Keywords), len(filters.Regexes))
	}
	if !backup {
		fmt.Println(warn("  no backup will be taken"))
	}

	var ok bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Delete matching entries and securely destroy the original file?").
			Value(&ok),
	)).Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return ok, nil
}

// renderResult writes the run summary (and, on dry runs, the would-be
// deletions) to stdout in the requested format.
func renderResult(res *cleaner.Result, format string) error {
	if err := report.WriteSummary(os.Stdout, res.Summary, format); err != nil {
		return err
	}
	if res.Summary.DryRun {
		if err := report.WriteDeletions(os.Stdout, res.Deletions, format); err != nil {
			return err
		}
		return nil
	}
	fmt.Println(success(fmt.Sprintf("✓ %d entries removed", res.Summary.Deleted)))
	return nil
}

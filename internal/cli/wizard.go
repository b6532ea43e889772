package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"go.uber.org/zap"

	"github.com/chazuruo/histwipe/internal/cleaner"
	"github.com/chazuruo/histwipe/internal/filter"
	"github.com/chazuruo/histwipe/internal/interrupt"
	"github.com/chazuruo/histwipe/internal/window"
)

// RunWizard walks through the interactive question flow: history file,
// time window, optional content filters, safety options, confirmation.
// It is the root command's behavior when stdin is a terminal.
func RunWizard() error {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyColorMode(cfg.Output.Color)

	fmt.Println(header("histwipe — securely clean your zsh history"))

	path, err := askPath(cfg.HistoryPath(), logger)
	if err != nil {
		return err
	}

	mode, err := askMode()
	if err != nil || mode == window.ModeNone {
		return err
	}

	inputs, err := askWindowInputs(mode)
	if err != nil {
		return err
	}

	filters, err := askFilters()
	if err != nil {
		return err
	}

	var (
		backup = cfg.Safety.Backup
		dryRun bool
		passes = cfg.Shred.Passes
	)
	if err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Take a backup copy before the original is destroyed?").
			Value(&backup),
		huh.NewConfirm().
			Title("Dry run? (report matches without changing anything)").
			Value(&dryRun),
	)).Run(); err != nil {
		return fmt.Errorf("form error: %w", err)
	}

	if !dryRun {
		passes, err = askPasses(passes)
		if err != nil {
			return err
		}

		var ok bool
		if err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete matching entries from %s and securely destroy the original?", path)).
				Value(&ok),
		)).Run(); err != nil {
			return fmt.Errorf("form error: %w", err)
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
		Path:    path,
		Mode:    mode,
		Inputs:  inputs,
		Filters: filters,
		DryRun:  dryRun,
		Backup:  backup && !dryRun,
		Passes:  passes,
	}, logger, flag)

	res, err := c.Run()
	if err != nil {
		return err
	}
	return renderResult(res, cfg.Output.Format)
}

// askPath prompts for the history file until one passes the preflight
// checks, starting from the configured default.
func askPath(def string, logger *zap.Logger) (string, error) {
	for {
		path := def
		if err := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("History file").
				Description("File to clean; leave as is to accept the default").
				Value(&path),
		)).Run(); err != nil {
			return "", fmt.Errorf("form error: %w", err)
		}
		if strings.TrimSpace(path) == "" {
			path = def
		}
		path = resolvePath(strings.TrimSpace(path), logger)
		if err := preflight(path); err != nil {
			fmt.Println(warn(fmt.Sprintf("cannot use %s: %v", path, err)))
			continue
		}
		return path, nil
	}
}

// askMode presents the window mode menu. ModeNone means the user chose
// to quit.
func askMode() (window.Mode, error) {
	labels := map[window.Mode]string{
		window.ModeToday:       "Today",
		window.ModeLast7Days:   "Last 7 days",
		window.ModeLast30Days:  "Last 30 days",
		window.ModeSpecificDay: "A specific day",
		window.ModeBetween:     "Between two dates",
		window.ModeBefore:      "Before a date",
		window.ModeAfter:       "After a date",
		window.ModeOlderThan:   "Older than N days",
		window.ModeNewerThan:   "Newer than N days",
		window.ModeAllTime:     "All history",
	}

	opts := make([]huh.Option[window.Mode], 0, len(labels)+1)
	for _, m := range window.Modes() {
		opts = append(opts, huh.NewOption(labels[m], m))
	}
	opts = append(opts, huh.NewOption("Quit without changes", window.ModeNone))

	var mode window.Mode
	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[window.Mode]().
			Title("Which entries should be removed?").
			Options(opts...).
			Value(&mode),
	)).Run(); err != nil {
		return window.ModeNone, fmt.Errorf("form error: %w", err)
	}
	return mode, nil
}

// askWindowInputs collects the date strings or day count the chosen
// mode needs, validating inline so a typo re-prompts instead of
// aborting the wizard.
func askWindowInputs(mode window.Mode) (window.Inputs, error) {
	var in window.Inputs

	validDate := func(s string) error {
		_, err := window.ParseDate(s, false)
		return err
	}
	validDays := func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n <= 0 {
			return fmt.Errorf("enter a positive number of days")
		}
		return nil
	}

	switch mode {
	case window.ModeSpecificDay, window.ModeBefore, window.ModeAfter:
		if err := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD, optionally with HH:MM or HH:MM:SS").
				Validate(validDate).
				Value(&in.Date),
		)).Run(); err != nil {
			return in, fmt.Errorf("form error: %w", err)
		}

	case window.ModeBetween:
		if err := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Start date").
				Validate(validDate).
				Value(&in.StartDate),
			huh.NewInput().
				Title("End date").
				Validate(validDate).
				Value(&in.EndDate),
		)).Run(); err != nil {
			return in, fmt.Errorf("form error: %w", err)
		}

	case window.ModeOlderThan, window.ModeNewerThan:
		var days string
		if err := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Number of days").
				Validate(validDays).
				Value(&days),
		)).Run(); err != nil {
			return in, fmt.Errorf("form error: %w", err)
		}
		in.Days, _ = strconv.Atoi(strings.TrimSpace(days))
	}

	return in, nil
}

// askFilters optionally collects keyword and regex predicates, one per
// prompt, until an empty answer ends each list.
func askFilters() (filter.Set, error) {
	var narrow bool
	if err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Narrow deletion by command content?").
			Description("Without filters, every entry in the time window is deleted").
			Value(&narrow),
	)).Run(); err != nil {
		return filter.Set{}, fmt.Errorf("form error: %w", err)
	}
	if !narrow {
		return filter.Set{}, nil
	}

	var keywords, patterns []string
	for {
		var kw string
		if err := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Keyword (substring match, empty to finish)").
				Value(&kw),
		)).Run(); err != nil {
			return filter.Set{}, fmt.Errorf("form error: %w", err)
		}
		if kw == "" {
			break
		}
		keywords = append(keywords, kw)
	}
	for {
		var pat string
		if err := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Regex (empty to finish)").
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					_, err := filter.Compile(nil, []string{s})
					return err
				}).
				Value(&pat),
		)).Run(); err != nil {
			return filter.Set{}, fmt.Errorf("form error: %w", err)
		}
		if pat == "" {
			break
		}
		patterns = append(patterns, pat)
	}

	return filter.Compile(keywords, patterns)
}

// askPasses prompts for the overwrite pass count.
func askPasses(def int) (int, error) {
	passes := strconv.Itoa(def)
	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Overwrite passes").
			Description("Random-data passes over the original before it is unlinked").
			Validate(func(s string) error {
				n, err := strconv.Atoi(strings.TrimSpace(s))
				if err != nil || n < 1 {
					return fmt.Errorf("enter a number >= 1")
				}
				return nil
			}).
			Value(&passes),
	)).Run(); err != nil {
		return 0, fmt.Errorf("form error: %w", err)
	}
	n, _ := strconv.Atoi(strings.TrimSpace(passes))
	return n, nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazuruo/histwipe/internal/errors"
	"github.com/chazuruo/histwipe/internal/history"
	"github.com/chazuruo/histwipe/internal/window"
)

// InfoOptions contains the options for the info command.
type InfoOptions struct {
	HistFile string
	JSON     bool
}

// Info is the read-only inspection of a history file.
type Info struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	Lines     int    `json:"lines"`
	Entries   int    `json:"entries"`
	Malformed int    `json:"malformed"`
	Leading   int    `json:"leading_lines"`
	Oldest    string `json:"oldest,omitempty"`
	Newest    string `json:"newest,omitempty"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	opts := &InfoOptions{}

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Inspect the history file without modifying it",
		Long: `Inspect the resolved history file: location, size, entry count, the
time span its timestamps cover, and how many lines do not parse as
extended-format entries. Never modifies anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(opts)
		},
	}

	cmd.Flags().StringVar(&opts.HistFile, "histfile", "", "history file to inspect (default $HISTFILE, else ~/.zsh_history)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "output in JSON format")

	return cmd
}

func runInfo(opts *InfoOptions) error {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyColorMode(cfg.Output.Color)

	path := opts.HistFile
	if path == "" {
		path = cfg.HistoryPath()
	}
	path = resolvePath(path, logger)

	info, err := inspect(path)
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Println(header("history file"))
	fmt.Printf("  path:      %s\n", info.Path)
	fmt.Printf("  size:      %d bytes\n", info.SizeBytes)
	fmt.Printf("  lines:     %d\n", info.Lines)
	fmt.Printf("  entries:   %d\n", info.Entries)
	if info.Oldest != "" {
		fmt.Printf("  oldest:    %s\n", info.Oldest)
		fmt.Printf("  newest:    %s\n", info.Newest)
	}
	if info.Malformed > 0 {
		fmt.Println(warn(fmt.Sprintf("  malformed: %d entries with unparseable headers", info.Malformed)))
	}
	if info.Leading > 0 {
		fmt.Println(warn(fmt.Sprintf("  leading:   %d lines before the first entry header", info.Leading)))
	}
	return nil
}

// inspect runs the segmenter over the file in counting mode.
func inspect(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errors.PathError{Op: "open", Path: path, Err: errors.ErrNotFound}
		}
		return nil, &errors.PathError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, &errors.PathError{Op: "stat", Path: path, Err: err}
	}

	info := &Info{Path: path, SizeBytes: fi.Size()}
	var oldest, newest int64

	lines, err := history.Segment(f, func(e history.Entry) error {
		if e.Leading {
			info.Leading++
			return nil
		}
		info.Entries++
		h, err := history.ParseHeader(e.HeaderLine())
		if err != nil {
			info.Malformed++
			return nil
		}
		if oldest == 0 || h.Timestamp < oldest {
			oldest = h.Timestamp
		}
		if h.Timestamp > newest {
			newest = h.Timestamp
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	info.Lines = lines

	if oldest != 0 {
		info.Oldest = window.FormatBound(oldest)
		info.Newest = window.FormatBound(newest)
	}
	return info, nil
}

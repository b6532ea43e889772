package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// VersionInfo contains version information for the binary.
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go_version"`
}

// VersionOptions contains the options for the version command.
type VersionOptions struct {
	Short bool
	JSON  bool
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	opts := &VersionOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long: `Display the histwipe version information.

Shows version, commit hash, build date and Go version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(opts, version, commit, date)
		},
	}

	cmd.Flags().BoolVar(&opts.Short, "short", false, "print only the version number")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "output in JSON format")

	return cmd
}

func runVersion(opts *VersionOptions, version, commit, date string) error {
	info := VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
		Go:      runtime.Version(),
	}

	if opts.JSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(info); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	}

	if opts.Short {
		fmt.Println(info.Version)
		return nil
	}

	fmt.Printf("histwipe version %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built at: %s\n", info.Date)
	fmt.Printf("go version: %s\n", info.Go)

	return nil
}

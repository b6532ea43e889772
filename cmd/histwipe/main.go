package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazuruo/histwipe/internal/cli"
)

// Version is set at build time using ldflags
var Version = "dev"

// Commit is set at build time using ldflags
var Commit = "unknown"

// Date is set at build time using ldflags
var Date = "unknown"

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "unexpected failure: %v\n", r)
			os.Exit(2)
		}
	}()

	rootCmd := &cobra.Command{
		Use:   "histwipe",
		Short: "Securely remove entries from your zsh history",
		Long: `histwipe removes entries from a zsh extended-format history file by
time window and optional content filters, then overwrites the original
file with random data before replacing it, so the removed commands are
not recoverable from the old file.

Run without arguments for the interactive wizard, or use 'histwipe
clean' with flags for scripted operation.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cli.Interactive() {
				return cli.RunWizard()
			}
			return cmd.Help()
		},
	}

	// Add global flags
	cli.AddGlobalFlags(rootCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(cli.NewCleanCommand())
	rootCmd.AddCommand(cli.NewInfoCommand())
	rootCmd.AddCommand(cli.NewInitCommand())
	rootCmd.AddCommand(cli.NewVersionCommand(Version, Commit, Date))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

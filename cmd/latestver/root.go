// Package main provides the entry point for the latestver CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for latestver.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "latestver",
		Short: "Find the latest release listed on a download page",
		Long: `latestver fetches a directory listing page, collects every file name that
fits PREFIX<version>SUFFIX, picks the numerically greatest version and prints
the URL of that artifact.

Versions are compared component by component as integers, so 1.10.0 is newer
than 1.9.9.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")

	cmd.AddCommand(NewResolveCmd())
	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and exits with a code describing the failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "latestver: %v\n", err)
		os.Exit(exitCode(err))
	}
}

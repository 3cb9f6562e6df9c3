package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/latestver/internal/config"
)

//go:embed templates/latestver.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new latestver targets file",
		Long: `Initialize creates a new .latestver targets file in the current directory.

The generated file includes:
- An example target
- Commented defaults for pattern, literal and constraint
- Commented request headers with environment variable references

Examples:
  # Create .latestver in current directory
  latestver init

  # Create targets file at a specific path
  latestver init -o ci/targets.yaml

  # Force overwrite existing file
  latestver init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the targets file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing targets file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("targets file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/latestver.yaml")
	if err != nil {
		return fmt.Errorf("failed to read targets file template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write targets file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created targets file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to list the pages to watch, then run:")
	fmt.Fprintln(out, "  latestver batch")

	return nil
}

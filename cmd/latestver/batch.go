package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/latestver/internal/config"
	"github.com/nao1215/latestver/internal/model"
	"github.com/nao1215/latestver/internal/pipeline"
	"github.com/nao1215/latestver/internal/report"
)

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [NAME...]",
		Short: "Resolve the targets listed in a targets file",
		Long: `Batch resolves every target in the targets file, or only the named ones,
concurrently. Plain output prints one "NAME<TAB>URL" line per resolved target.
A failed target does not stop the others; all failures are reported on stderr.

The targets file is searched in this order unless --config is given:
  1. .latestver in the current directory
  2. .latestver in the home directory
  3. targets.yaml in the XDG config directory (~/.config/latestver)

Run "latestver init" to create a commented example.

Examples:
  # Resolve every target
  latestver batch

  # Resolve two targets from a specific file
  latestver batch -c ci/targets.yaml mysoftware otherlib

  # Markdown summary written to a file
  latestver batch --markdown -o reports/latest.md

Targets file (.latestver) example:
  headers:
    Authorization: "Bearer ${MIRROR_TOKEN}"
  targets:
    - name: mysoftware
      url: https://example.com/stable/
      prefix: mysoftware-
      suffix: .tar.gz`,
		Args: cobra.ArbitraryArgs,
		RunE: runBatchCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Targets file path (default: .latestver in current or home directory)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of targets resolved concurrently")
	addFetchFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runBatchCmd executes the batch command.
func runBatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return err
	}
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	if err := loadTargets(cfg, args); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runBatch(ctx, cmd.OutOrStdout(), cfg, logger)
}

// loadTargets reads the targets file and selects the targets named in names.
// An explicitly given file must exist.
func loadTargets(cfg *config.Config, names []string) error {
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return fmt.Errorf("%w: create one with \"latestver init\" or pass --config", config.ErrConfigNotFound)
	}

	file, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	targets, err := file.Select(names...)
	if err != nil {
		return fmt.Errorf("%s: %w", configPath, err)
	}

	cfg.TargetsFile = file
	cfg.Targets = targets
	cfg.Headers = file.HeadersCopy()
	return nil
}

// runBatch resolves cfg.Targets concurrently, writes the report and records
// the resolutions when requested. Failures are returned together as a
// *multierror.Error in target order.
func runBatch(ctx context.Context, stdout io.Writer, cfg *config.Config, logger *slog.Logger) error {
	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.NewDefault(fetcher, pipeline.WithLogger(logger))
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	var (
		results  []*model.Resolution
		batchErr error
	)
	if cfg.JSONReport || cfg.MarkdownReport || cfg.ReportFile != "" {
		results, batchErr = bp.ProcessBatch(ctx, cfg.Targets)
		if err := writeReport(cfg, stdout, results, true); err != nil {
			return err
		}
	} else {
		// Plain lines are printed as soon as each target and those before it finish.
		plain := report.NewPlainWriter(stdout, report.WithNames(true))
		var writeErr error
		results, batchErr = bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(res *model.Resolution, _ int) {
			if writeErr != nil {
				return
			}
			if _, err := plain.Write(res); err != nil {
				writeErr = fmt.Errorf("failed to write report: %w", err)
			}
		})
		if writeErr != nil {
			return writeErr
		}
	}
	if err := saveResolutions(ctx, cfg, results, logger); err != nil {
		if batchErr == nil {
			return err
		}
		logger.Error("failed to record resolutions", "error", err)
	}
	return batchErr
}

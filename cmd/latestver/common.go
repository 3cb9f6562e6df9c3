package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/nao1215/latestver/internal/config"
	"github.com/nao1215/latestver/internal/database"
	"github.com/nao1215/latestver/internal/listing"
	"github.com/nao1215/latestver/internal/log"
	"github.com/nao1215/latestver/internal/model"
	"github.com/nao1215/latestver/internal/report"
)

// addFetchFlags registers the flags that control how listing pages are fetched.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().IntP("retries", "r", config.DefaultRetries,
		"Retries after a connection error or a 5xx/429 response")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")
	cmd.Flags().String("proxy", "",
		"Proxy URL (http://, https://, socks5:// or socks5h://)")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum number of listing bytes to read")
}

// addReportFlags registers the output and history flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed); with --json or --markdown the URL is still printed")
	cmd.Flags().BoolP("save", "s", false,
		"Record resolutions in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
}

// buildConfig creates a Config from defaults, LATESTVER_* variables and the
// flags set on cmd, later sources taking precedence. Flags left at their
// defaults do not override the environment.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	env.Apply(cfg)

	cfg.Verbose = getBoolFlag(cmd, "verbose")

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("retries") {
		if cfg.Retries, err = flags.GetInt("retries"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.Proxy, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-body-size") {
		if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.SaveToDB, err = flags.GetBool("save"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getBoolFlag retrieves a boolean flag from the command or the root's
// persistent flags. Unknown flags read as false.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		value, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return value
}

// setupLogger creates a structured logger on the command's stderr that masks
// credentials. --log-json switches from text to JSON lines.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	if getBoolFlag(cmd, "log-json") {
		return log.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return log.NewSecureLogger(cmd.ErrOrStderr(), verbose)
}

// newFetcher creates the listing fetcher described by cfg.
func newFetcher(cfg *config.Config, logger *slog.Logger) (*listing.Fetcher, error) {
	opts := []listing.FetcherOption{
		listing.WithTimeout(cfg.Timeout),
		listing.WithRetries(cfg.Retries),
		listing.WithUserAgent(cfg.UserAgent),
		listing.WithMaxBodySize(cfg.MaxBodySize),
		listing.WithLogger(logger),
	}
	if cfg.Proxy != "" {
		opts = append(opts, listing.WithProxy(cfg.Proxy))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, listing.WithHeaders(cfg.Headers))
	}

	fetcher, err := listing.NewFetcher(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return fetcher, nil
}

// openOutput returns the report destination: cfg.ReportFile when set,
// otherwise stdout. The returned function closes the file.
func openOutput(cfg *config.Config, stdout io.Writer) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// newReportWriter returns the writer for the report format selected in cfg.
func newReportWriter(cfg *config.Config, w io.Writer, withNames bool) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewPlainWriter(w, report.WithNames(withNames))
	}
}

// writeReport writes results to the destination selected in cfg. Batch
// reports name each target; otherwise the first resolution is written alone.
func writeReport(cfg *config.Config, stdout io.Writer, results []*model.Resolution, batch bool) (err error) {
	output, closeOutput, err := openOutput(cfg, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOutput(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	writer := newReportWriter(cfg, output, batch)
	if cfg.ReportFile != "" && (cfg.JSONReport || cfg.MarkdownReport) {
		// Structured reports saved to a file still leave the URL on stdout.
		writer = report.NewMultiWriter(writer, report.NewPlainWriter(stdout, report.WithNames(batch)))
	}
	if batch {
		_, err = writer.WriteAll(results)
	} else {
		_, err = writer.Write(results[0])
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// saveResolutions records results in the history database in cfg.DBDir.
// It does nothing unless cfg.SaveToDB is set.
func saveResolutions(ctx context.Context, cfg *config.Config, results []*model.Resolution, logger *slog.Logger) error {
	if !cfg.SaveToDB {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var merr *multierror.Error
	for _, res := range results {
		if res == nil {
			continue
		}
		if err := db.SaveResolution(ctx, res); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("failed to save resolution of %s: %w", res.Target.DisplayName(), err))
			continue
		}
		logger.Debug("resolution saved to database",
			"target", res.Target.DisplayName(),
			"path", db.Path(),
		)
	}
	return merr.ErrorOrNil()
}

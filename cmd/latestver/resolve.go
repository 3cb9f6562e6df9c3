package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/latestver/internal/config"
	"github.com/nao1215/latestver/internal/listing"
	"github.com/nao1215/latestver/internal/model"
	"github.com/nao1215/latestver/internal/pipeline"
	"github.com/nao1215/latestver/internal/version"
)

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve URL PREFIX SUFFIX [PATTERN]",
		Short: "Print the URL of the latest artifact listed on a page",
		Long: `Resolve fetches the listing page at URL and prints URL + PREFIX + VERSION + SUFFIX
for the numerically greatest VERSION found between PREFIX and SUFFIX.

PREFIX and SUFFIX are regular expression fragments; use --literal to match them
verbatim. PATTERN is the regular expression of the version number and defaults
to ` + "`" + version.DefaultPattern + "`" + `. URL is used as given, so it normally ends with "/".

Exit codes:
  0  the URL was printed
  1  usage or configuration error
  2  the page could not be retrieved
  3  no version fits the template
  4  a matched version is not numeric

Examples:
  # Latest mysoftware tarball
  latestver resolve https://example.com/stable/ mysoftware- .tar.gz

  # Prefix containing regular expression metacharacters
  latestver resolve --literal https://example.com/pkg/ 'lib++-' .zip

  # Stay on the 2.x line
  latestver resolve -C '>= 2.0, < 3.0' https://example.com/stable/ mysoftware- .tar.gz

  # JSON report, recorded in history
  latestver resolve --json --save https://example.com/stable/ mysoftware- .tar.gz`,
		Args: cobra.RangeArgs(3, 4),
		RunE: runResolveCmd,
	}

	addFetchFlags(cmd)
	cmd.Flags().BoolP("literal", "l", false,
		"Match PREFIX and SUFFIX verbatim instead of as regular expressions")
	cmd.Flags().StringP("constraint", "C", "",
		`Only consider versions satisfying the constraint, e.g. ">= 2.0, < 3.0"`)
	addReportFlags(cmd)

	return cmd
}

// runResolveCmd executes the resolve command.
func runResolveCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	target, err := targetFromArgs(cmd, args)
	if err != nil {
		return err
	}
	cfg.Targets = []model.Target{target}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runResolve(ctx, cmd.OutOrStdout(), cfg, logger)
}

// targetFromArgs builds a target from the positional arguments and the
// template flags. It is named after its URL.
func targetFromArgs(cmd *cobra.Command, args []string) (model.Target, error) {
	literal, err := cmd.Flags().GetBool("literal")
	if err != nil {
		return model.Target{}, err
	}
	constraint, err := cmd.Flags().GetString("constraint")
	if err != nil {
		return model.Target{}, err
	}

	target := model.Target{
		Name:       args[0],
		URL:        args[0],
		Prefix:     args[1],
		Suffix:     args[2],
		Literal:    literal,
		Constraint: constraint,
	}
	if len(args) > 3 {
		target.Pattern = args[3]
	}
	return target, nil
}

// runResolve resolves the single target in cfg, writes the report and
// records the resolution when requested.
func runResolve(ctx context.Context, stdout io.Writer, cfg *config.Config, logger *slog.Logger) error {
	target := cfg.Targets[0]

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("resolving latest version",
		"url", target.URL,
		"prefix", target.Prefix,
		"suffix", target.Suffix,
		"pattern", target.Pattern,
	)

	res, resolveErr := pipeline.Resolve(ctx, fetcher, target, pipeline.WithLogger(logger))

	if err := writeReport(cfg, stdout, []*model.Resolution{res}, false); err != nil {
		return err
	}
	if err := saveResolutions(ctx, cfg, []*model.Resolution{res}, logger); err != nil {
		if resolveErr == nil {
			return err
		}
		logger.Error("failed to record resolution", "error", err)
	}

	if resolveErr != nil {
		return describeFailure(target, resolveErr)
	}
	return nil
}

// describeFailure adds the template of target to transport failures, whose
// messages name only the URL.
func describeFailure(target model.Target, err error) error {
	var transportErr *listing.TransportError
	if !errors.As(err, &transportErr) {
		return err
	}
	tmpl, tmplErr := target.Template()
	if tmplErr != nil {
		return err
	}
	return fmt.Errorf("resolve %q: %w", tmpl.Shape(), err)
}

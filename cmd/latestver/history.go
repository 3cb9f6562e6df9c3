package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/latestver/internal/config"
	"github.com/nao1215/latestver/internal/database"
	"github.com/nao1215/latestver/internal/model"
	"github.com/nao1215/latestver/internal/report"
)

// defaultHistoryLimit is the number of entries shown by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [NAME]",
		Short: "Show recorded resolutions of a target",
		Long: `History shows the resolutions recorded with --save, newest first, and marks
the ones where the latest version changed. Without NAME it lists the targets
that have a history.

Targets resolved with "latestver resolve" are named after their URL.

--latest prints the artifact URL of the newest recorded resolution without
contacting the server; --id shows one recorded resolution. With --json both
print the whole stored resolution.

Examples:
  # Targets with recorded resolutions
  latestver history

  # Last 5 resolutions of mysoftware
  latestver history -n 5 mysoftware

  # History as JSON
  latestver history --json https://example.com/stable/

  # Last recorded artifact of mysoftware
  latestver history --latest mysoftware`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of entries to show (0 shows all)")
	cmd.Flags().BoolP("json", "j", false,
		"Output entries as JSON")
	cmd.Flags().Bool("latest", false,
		"Print the newest recorded resolution of NAME")
	cmd.Flags().String("id", "",
		"Print the recorded resolution with this ID")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// historyEntryJSON is the JSON form of a history entry.
type historyEntryJSON struct {
	ResolutionID string    `json:"resolution_id"`
	Target       string    `json:"target"`
	URL          string    `json:"url"`
	Latest       string    `json:"latest,omitempty"`
	ArtifactURL  string    `json:"artifact_url,omitempty"`
	VersionCount int       `json:"version_count"`
	Changed      bool      `json:"changed"`
	Error        string    `json:"error,omitempty"`
	ResolvedAt   time.Time `json:"resolved_at"`
	DurationMS   int64     `json:"duration_ms"`
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit < 0 {
		return errors.New("invalid limit: must be non-negative")
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	latest, err := cmd.Flags().GetBool("latest")
	if err != nil {
		return err
	}
	resolutionID, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}
	switch {
	case latest && resolutionID != "":
		return errors.New("--latest and --id cannot be used together")
	case latest && len(args) == 0:
		return errors.New("--latest requires a target NAME")
	case resolutionID != "" && len(args) > 0:
		return errors.New("--id does not take a target NAME")
	}

	cfg := config.NewConfig()
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	env.Apply(cfg)
	if cmd.Flags().Changed("db-dir") {
		if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
			return err
		}
	}

	db, err := database.Open(cfg.DBDir, database.ReadOnlyOptions())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w (record resolutions with --save first)", err)
		}
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()

	if resolutionID != "" {
		res, err := db.GetResolution(cmd.Context(), resolutionID)
		if err != nil {
			return err
		}
		if res == nil {
			return fmt.Errorf("no resolution with ID %q", resolutionID)
		}
		return writeStoredResolution(out, res, asJSON)
	}

	if latest {
		res, err := db.LatestResolution(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if res == nil {
			return fmt.Errorf("no history for %q", args[0])
		}
		return writeStoredResolution(out, res, asJSON)
	}

	if len(args) == 0 {
		targets, err := db.ListTargets(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list targets: %w", err)
		}
		if asJSON {
			return writeJSON(out, targets)
		}
		for _, target := range targets {
			fmt.Fprintln(out, target)
		}
		return nil
	}

	entries, err := db.History(cmd.Context(), args[0], limit)
	if err != nil {
		return fmt.Errorf("failed to read history of %s: %w", args[0], err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no history for %q", args[0])
	}

	if asJSON {
		items := make([]historyEntryJSON, len(entries))
		for i, e := range entries {
			items[i] = historyEntryJSON{
				ResolutionID: e.ResolutionID,
				Target:       e.Target,
				URL:          e.URL,
				Latest:       e.Latest,
				ArtifactURL:  e.ArtifactURL,
				VersionCount: e.VersionCount,
				Changed:      e.Changed,
				Error:        e.Error,
				ResolvedAt:   e.ResolvedAt,
				DurationMS:   e.Duration.Milliseconds(),
			}
		}
		return writeJSON(out, items)
	}

	return writeHistoryTable(out, entries)
}

// writeStoredResolution prints a recorded resolution: the artifact URL, or
// the whole resolution with asJSON. A recorded failure is returned as an error
// in plain mode.
func writeStoredResolution(w io.Writer, res *model.Resolution, asJSON bool) error {
	if asJSON {
		_, err := report.NewJSONWriter(w, report.WithPrettyPrint()).Write(res)
		return err
	}
	if !res.Succeeded() {
		return fmt.Errorf("recorded resolution %s of %s failed: %s",
			res.ID, res.Target.DisplayName(), res.ErrorMessage)
	}
	_, err := report.NewPlainWriter(w).Write(res)
	return err
}

// writeHistoryTable prints entries as borderless aligned columns.
func writeHistoryTable(w io.Writer, entries []database.HistoryEntry) error {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		latest := e.Latest
		detail := e.ArtifactURL
		if e.Error != "" {
			latest = "-"
			detail = e.Error
		}
		changed := ""
		if e.Changed {
			changed = "yes"
		}
		rows = append(rows, []string{
			e.ResolvedAt.Local().Format(time.DateTime),
			latest,
			changed,
			fmt.Sprint(e.VersionCount),
			detail,
		})
	}

	cell := lipgloss.NewStyle().PaddingRight(2)
	last := lipgloss.NewStyle()

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		Headers("RESOLVED AT", "LATEST", "CHANGED", "VERSIONS", "ARTIFACT / ERROR").
		Rows(rows...).
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == 4 {
				return last
			}
			return cell
		})

	_, err := fmt.Fprintln(w, t.String())
	return err
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/latestver/internal/model"
	"github.com/nao1215/latestver/internal/version"
)

// Resolution status labels.
const (
	statusResolved = "resolved"
	statusFailed   = "failed"
)

// MarkdownWriter outputs resolutions as a GitHub-flavored Markdown summary.
type MarkdownWriter struct {
	baseWriter

	// title is the heading of the report.
	title string
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithTitle sets the report heading.
func WithTitle(title string) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		if title != "" {
			w.title = title
		}
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		title:      "Latest Versions",
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs a report for a single resolution.
func (w *MarkdownWriter) Write(res *model.Resolution) (int, error) {
	return w.WriteAll([]*model.Resolution{res})
}

// WriteAll outputs a summary table followed by the versions found per target.
func (w *MarkdownWriter) WriteAll(results []*model.Resolution) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1(w.title)
	md.PlainText("")

	w.writeSummary(md, results)
	w.writeTable(md, results)
	w.writeVersions(md, results)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeSummary writes an alert describing the batch outcome.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, results []*model.Resolution) {
	s := Summarize(results)
	switch {
	case s.Total == 0:
		md.Note("No targets were resolved.")
	case s.Failed == s.Total:
		md.Cautionf("All %d target(s) failed to resolve.", s.Total)
	case s.Failed > 0:
		md.Warningf("%d of %d target(s) failed to resolve.", s.Failed, s.Total)
	default:
		md.Tip("All targets resolved.")
	}
	md.PlainText("")
}

// writeTable writes one row per resolution.
func (w *MarkdownWriter) writeTable(md *markdown.Markdown, results []*model.Resolution) {
	if len(results) == 0 {
		return
	}

	caser := cases.Title(language.English)
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		if res == nil {
			continue
		}

		status := caser.String(statusResolved)
		latest := "`" + res.Latest + "`"
		artifact := res.ArtifactURL
		if !res.Succeeded() {
			status = caser.String(statusFailed) + ": " + truncateString(res.ErrorMessage, 80)
			latest = "-"
			artifact = "-"
		}

		rows = append(rows, []string{
			escapeCell(res.Target.DisplayName()),
			latest,
			escapeCell(artifact),
			strconv.Itoa(len(res.Versions)),
			escapeCell(status),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Target", "Latest", "Artifact", "Versions", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeVersions writes the versions found per target in ascending order.
func (w *MarkdownWriter) writeVersions(md *markdown.Markdown, results []*model.Resolution) {
	for _, res := range results {
		if res == nil || len(res.Versions) == 0 {
			continue
		}

		sorted, err := version.Sort(res.Versions)
		if err != nil {
			sorted = res.Versions
		}
		md.Details(res.Target.DisplayName(), strings.Join(sorted, ", "))
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [latestver](https://github.com/nao1215/latestver)*")
}

// escapeCell keeps pipes in regular expressions from splitting table cells.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

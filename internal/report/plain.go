package report

import (
	"io"
	"strings"

	"github.com/nao1215/latestver/internal/model"
)

// PlainWriter prints the artifact URL of each successful resolution on its
// own line. Failed resolutions print nothing; their errors belong on stderr.
type PlainWriter struct {
	baseWriter

	// withNames prefixes each line with the target name and a tab.
	withNames bool
}

// PlainWriterOption configures a PlainWriter.
type PlainWriterOption func(*PlainWriter)

// WithNames prefixes each URL with the target name and a tab.
func WithNames(enabled bool) PlainWriterOption {
	return func(w *PlainWriter) {
		w.withNames = enabled
	}
}

// NewPlainWriter creates a PlainWriter that outputs to the given writer.
func NewPlainWriter(output io.Writer, opts ...PlainWriterOption) *PlainWriter {
	w := &PlainWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the artifact URL followed by a newline.
func (w *PlainWriter) Write(res *model.Resolution) (int, error) {
	return w.WriteAll([]*model.Resolution{res})
}

// WriteAll outputs one line per successful resolution.
func (w *PlainWriter) WriteAll(results []*model.Resolution) (int, error) {
	var sb strings.Builder
	for _, res := range results {
		if res == nil || !res.Succeeded() {
			continue
		}
		if w.withNames {
			sb.WriteString(res.Target.DisplayName())
			sb.WriteByte('\t')
		}
		sb.WriteString(res.ArtifactURL)
		sb.WriteByte('\n')
	}
	if sb.Len() == 0 {
		return 0, nil
	}
	return io.WriteString(w.output, sb.String())
}

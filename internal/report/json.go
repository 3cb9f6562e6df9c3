package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/latestver/internal/model"
)

// JSONWriter outputs resolutions in JSON format.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is the latestver version recorded in batch reports.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the latestver version in batch reports.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs a single resolution as a JSON object.
func (w *JSONWriter) Write(res *model.Resolution) (int, error) {
	return w.writeJSON(res)
}

// WriteAll outputs the resolutions wrapped in a BatchReport.
func (w *JSONWriter) WriteAll(results []*model.Resolution) (int, error) {
	return w.writeJSON(NewBatchReport(results, w.version))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// Summary counts the outcomes of a batch.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Summarize counts succeeded and failed resolutions.
func Summarize(results []*model.Resolution) Summary {
	s := Summary{Total: len(results)}
	for _, res := range results {
		if res != nil && res.Succeeded() {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

// BatchReport is the JSON document written for a batch.
type BatchReport struct {
	// Version is the latestver version that generated this report.
	Version string `json:"version,omitempty"`

	// GeneratedAt is when the report was written.
	GeneratedAt time.Time `json:"generated_at"`

	// Summary counts the outcomes.
	Summary Summary `json:"summary"`

	// Resolutions holds one entry per target, in input order.
	Resolutions []*model.Resolution `json:"resolutions"`
}

// NewBatchReport creates a BatchReport for results.
func NewBatchReport(results []*model.Resolution, version string) *BatchReport {
	if results == nil {
		results = make([]*model.Resolution, 0)
	}
	return &BatchReport{
		Version:     version,
		GeneratedAt: time.Now().UTC(),
		Summary:     Summarize(results),
		Resolutions: results,
	}
}

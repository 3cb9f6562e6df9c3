package report

import (
	"io"

	"github.com/nao1215/latestver/internal/model"
)

// Writer writes resolutions to a destination.
type Writer interface {
	// Write outputs a single resolution.
	// Returns the number of bytes written and any error encountered.
	Write(res *model.Resolution) (int, error)

	// WriteAll outputs the resolutions of a batch, in order.
	WriteAll(results []*model.Resolution) (int, error)
}

// MultiWriter writes to multiple Writers in turn.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the resolution to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(res *model.Resolution) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(res)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteAll outputs the resolutions to all configured Writers.
func (m *MultiWriter) WriteAll(results []*model.Resolution) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteAll(results)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

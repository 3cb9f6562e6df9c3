// Package report writes resolutions in the supported output formats:
//   - PlainWriter: the artifact URL on its own line, for shell use
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: a Markdown summary table for documentation
//
// Writers implement the Writer interface and can be composed with MultiWriter.
package report

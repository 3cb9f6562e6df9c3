package version

import (
	"errors"
	"fmt"
	"regexp"
)

// DefaultPattern matches three dot-separated groups of digits, e.g. "1.10.3".
const DefaultPattern = `\d+\.\d+\.\d+`

// versionGroup is the name of the capturing group that wraps the pattern.
// A named group keeps the whole version span addressable even when the prefix
// or the pattern contain capturing groups of their own.
const versionGroup = "version"

// ErrInvalidTemplate is returned when a template does not compile into a
// regular expression.
var ErrInvalidTemplate = errors.New("invalid template")

// Template describes the textual shape of a versioned file name:
// Prefix, then a version matching Pattern, then Suffix.
//
// Prefix and Suffix are regular expression fragments unless the template was
// built with WithLiteral. A Template is immutable and safe for concurrent use.
type Template struct {
	// Prefix is the text before the version number, e.g. "mysoftware-".
	Prefix string

	// Suffix is the text after the version number, e.g. ".tar.gz".
	Suffix string

	// Pattern is the regular expression for one version number.
	Pattern string

	// Literal reports whether Prefix and Suffix are matched verbatim.
	Literal bool

	re    *regexp.Regexp
	group int
}

// TemplateOption configures a Template.
type TemplateOption func(*Template)

// WithLiteral makes the template match Prefix and Suffix verbatim instead of
// interpreting them as regular expressions.
func WithLiteral(literal bool) TemplateOption {
	return func(t *Template) {
		t.Literal = literal
	}
}

// NewTemplate compiles a template. An empty pattern means DefaultPattern.
func NewTemplate(prefix, suffix, pattern string, opts ...TemplateOption) (*Template, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	t := &Template{
		Prefix:  prefix,
		Suffix:  suffix,
		Pattern: pattern,
	}
	for _, opt := range opts {
		opt(t)
	}

	prefixExpr, suffixExpr := t.Prefix, t.Suffix
	if t.Literal {
		prefixExpr = regexp.QuoteMeta(prefixExpr)
		suffixExpr = regexp.QuoteMeta(suffixExpr)
	}

	expr := prefixExpr + "(?P<" + versionGroup + ">" + t.Pattern + ")" + suffixExpr
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidTemplate, t.Shape(), err)
	}

	t.re = re
	t.group = re.SubexpIndex(versionGroup)
	return t, nil
}

// Shape returns a human-readable description of the expected token,
// e.g. `mysoftware-<\d+\.\d+\.\d+>.tar.gz`.
func (t *Template) Shape() string {
	return t.Prefix + "<" + t.Pattern + ">" + t.Suffix
}

// String implements fmt.Stringer.
func (t *Template) String() string {
	return t.Shape()
}

// Extract returns the version embedded in chunk.
// It searches for the first occurrence of the template anywhere in chunk and
// returns the text matched by the pattern, unmodified. The boolean is false
// when chunk holds no match.
func (t *Template) Extract(chunk string) (string, bool) {
	m := t.re.FindStringSubmatchIndex(chunk)
	if m == nil {
		return "", false
	}
	start, end := m[2*t.group], m[2*t.group+1]
	if start < 0 {
		return "", false
	}
	return chunk[start:end], true
}

// Collect runs Extract over every chunk and returns the versions found,
// in the order the chunks were given. Duplicates are kept.
func (t *Template) Collect(chunks []string) []string {
	tokens := make([]string, 0)
	for _, chunk := range chunks {
		if token, ok := t.Extract(chunk); ok {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// Compose builds the artifact location: baseURL, Prefix, token and Suffix
// concatenated as-is. No separator is inserted between baseURL and Prefix.
func (t *Template) Compose(baseURL, token string) string {
	return baseURL + t.Prefix + token + t.Suffix
}

package version

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoVersionsFound is returned when no version could be selected because
// no token matched the template.
var ErrNoVersionsFound = errors.New("no versions found")

// NoVersionsFoundError describes a page that was retrieved but contained no
// token matching the template. It matches ErrNoVersionsFound with errors.Is.
type NoVersionsFoundError struct {
	// URL is the page that was scanned.
	URL string

	// Template is the template the page was scanned with.
	Template *Template

	// Constraint is the version constraint that filtered the tokens, if any.
	// When set, tokens may have matched but none satisfied it.
	Constraint string

	// Matched is the number of tokens found before constraint filtering.
	Matched int
}

// Error returns a message that explains which token shape was expected.
func (e *NoVersionsFoundError) Error() string {
	var b strings.Builder
	b.WriteString("no versions found")
	if e.URL != "" {
		fmt.Fprintf(&b, " at %s", e.URL)
	}
	if e.Template != nil {
		fmt.Fprintf(&b, ": the page must list files shaped like %q", e.Template.Shape())
	}
	if e.Constraint != "" {
		fmt.Fprintf(&b, " (%d matched, none satisfy %q)", e.Matched, e.Constraint)
	}
	return b.String()
}

// Unwrap allows errors.Is(err, ErrNoVersionsFound).
func (e *NoVersionsFoundError) Unwrap() error {
	return ErrNoVersionsFound
}

// MalformedVersionError is returned when a captured token does not consist of
// dot-separated non-negative integers. It points at a template pattern that
// matches more than numbers.
type MalformedVersionError struct {
	// Token is the captured version text.
	Token string

	// Component is the part of Token that failed to parse.
	Component string

	// Err is the underlying parse error.
	Err error
}

func (e *MalformedVersionError) Error() string {
	return fmt.Sprintf("malformed version %q: component %q is not a non-negative integer", e.Token, e.Component)
}

func (e *MalformedVersionError) Unwrap() error {
	return e.Err
}

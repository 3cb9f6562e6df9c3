package model

import (
	"errors"
	"fmt"

	"github.com/nao1215/latestver/internal/version"
)

// ErrEmptyURL is returned when a target has no page URL.
var ErrEmptyURL = errors.New("target URL is empty")

// Target is a listing page and the template of the artifact names it lists.
type Target struct {
	// Name identifies the target in the targets file and in history.
	// Targets built from command line arguments are named after their URL.
	Name string `json:"name" yaml:"name,omitempty"`

	// URL is the listing page. It is also the first part of the artifact URL.
	URL string `json:"url" yaml:"url"`

	// Prefix is the text before the version in the artifact file name.
	Prefix string `json:"prefix" yaml:"prefix"`

	// Suffix is the text after the version in the artifact file name.
	Suffix string `json:"suffix" yaml:"suffix"`

	// Pattern is the regular expression of the version number.
	// Empty means version.DefaultPattern.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Literal matches Prefix and Suffix verbatim instead of as regular expressions.
	Literal bool `json:"literal,omitempty" yaml:"literal,omitempty"`

	// Constraint limits eligible versions, e.g. ">= 2.0, < 3.0".
	Constraint string `json:"constraint,omitempty" yaml:"constraint,omitempty"`
}

// DisplayName returns Name, or URL when the target is unnamed.
func (t Target) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.URL
}

// Template compiles the target's match template.
func (t Target) Template() (*version.Template, error) {
	return version.NewTemplate(t.Prefix, t.Suffix, t.Pattern, version.WithLiteral(t.Literal))
}

// VersionConstraint parses the target's constraint.
// It returns nil when the target has no constraint.
func (t Target) VersionConstraint() (*version.Constraint, error) {
	if t.Constraint == "" {
		return nil, nil
	}
	return version.NewConstraint(t.Constraint)
}

// Validate checks that the target can be resolved.
func (t Target) Validate() error {
	if t.URL == "" {
		return fmt.Errorf("target %q: %w", t.Name, ErrEmptyURL)
	}
	if _, err := t.Template(); err != nil {
		return fmt.Errorf("target %q: %w", t.DisplayName(), err)
	}
	if _, err := t.VersionConstraint(); err != nil {
		return fmt.Errorf("target %q: %w", t.DisplayName(), err)
	}
	return nil
}

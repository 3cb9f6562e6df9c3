package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/latestver/internal/model"
)

// DefaultConfigFile is the default targets file name.
const DefaultConfigFile = ".latestver"

// xdgConfigFile is the targets file name inside the XDG config directory.
const xdgConfigFile = "targets.yaml"

// TargetDefaults holds values applied to every target that does not set them.
type TargetDefaults struct {
	// Pattern replaces the built-in version pattern.
	Pattern string `yaml:"pattern,omitempty"`

	// Literal matches the prefix and suffix of every target that does not set
	// literal itself verbatim.
	Literal bool `yaml:"literal,omitempty"`

	// Constraint applies to targets without their own constraint.
	Constraint string `yaml:"constraint,omitempty"`
}

// File represents the structure of the targets file.
type File struct {
	// Defaults are merged into each target.
	Defaults TargetDefaults `yaml:"defaults,omitempty"`

	// Headers are sent with every request.
	// Values may reference environment variables as ${NAME}.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Targets lists the pages to resolve. Names must be unique.
	Targets []model.Target `yaml:"targets"`
}

// envVarRe matches ${NAME} references.
var envVarRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${NAME} references with the value of the environment
// variable NAME. Unset variables expand to "". A bare $ is left alone so
// regular expression anchors survive.
func expandEnv(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(envVarRe.FindStringSubmatch(ref)[1])
	})
}

// LoadConfigFile loads a targets file.
// If the file does not exist, it returns ErrConfigNotFound.
//
// Environment references are expanded in every target field except Pattern,
// the defaults are merged in, unnamed targets are named after their URL and
// names are checked for uniqueness.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	// A target's literal: false must win over defaults.literal: true, which
	// the plain bool cannot tell apart from an absent key.
	var explicit struct {
		Targets []struct {
			Literal *bool `yaml:"literal"`
		} `yaml:"targets"`
	}
	if err := yaml.Unmarshal(data, &explicit); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cf.Headers == nil {
		cf.Headers = make(map[string]string)
	}
	for k, v := range cf.Headers {
		cf.Headers[k] = expandEnv(v)
	}

	seen := make(map[string]struct{}, len(cf.Targets))
	for i := range cf.Targets {
		literalSet := i < len(explicit.Targets) && explicit.Targets[i].Literal != nil
		target := cf.applyDefaults(cf.Targets[i], literalSet)
		if target.Name == "" {
			target.Name = target.URL
		}
		if _, ok := seen[target.Name]; ok {
			return nil, fmt.Errorf("%w %q in %s", ErrDuplicateTarget, target.Name, path)
		}
		seen[target.Name] = struct{}{}
		cf.Targets[i] = target
	}

	return &cf, nil
}

// applyDefaults expands environment references in t and fills unset fields
// from the file defaults. literalSet reports whether t sets literal itself.
func (cf *File) applyDefaults(t model.Target, literalSet bool) model.Target {
	t.Name = expandEnv(t.Name)
	t.URL = expandEnv(t.URL)
	t.Prefix = expandEnv(t.Prefix)
	t.Suffix = expandEnv(t.Suffix)
	t.Constraint = expandEnv(t.Constraint)

	if t.Pattern == "" {
		t.Pattern = cf.Defaults.Pattern
	}
	if t.Constraint == "" {
		t.Constraint = expandEnv(cf.Defaults.Constraint)
	}
	if !literalSet {
		t.Literal = cf.Defaults.Literal
	}
	return t
}

// Select returns the targets with the given names, in the order requested.
// With no names it returns every target in file order.
func (cf *File) Select(names ...string) ([]model.Target, error) {
	if len(names) == 0 {
		return append([]model.Target(nil), cf.Targets...), nil
	}

	byName := make(map[string]model.Target, len(cf.Targets))
	for _, t := range cf.Targets {
		byName[t.Name] = t
	}

	selected := make([]model.Target, 0, len(names))
	for _, name := range names {
		t, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, name)
		}
		selected = append(selected, t)
	}
	return selected, nil
}

// HeadersCopy returns a copy of the request headers.
func (cf *File) HeadersCopy() map[string]string {
	return maps.Clone(cf.Headers)
}

// FindConfigFile searches for the targets file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .latestver in the current directory
// 3. Look for .latestver in the user's home directory
// 4. Look for targets.yaml in the XDG config directory
//
// Returns the path to the file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), xdgConfigFile))

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

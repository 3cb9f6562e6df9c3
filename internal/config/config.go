package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/latestver/internal/model"
)

// Default configuration values.
const (
	// DefaultTimeout bounds a single request for a listing page.
	DefaultTimeout = 30 * time.Second

	// DefaultRetries is the number of retries after a failed request.
	// Zero means one attempt.
	DefaultRetries = 0

	// DefaultBatchSize is the number of targets resolved concurrently.
	DefaultBatchSize = 10

	// AppName is the application name used for XDG directory paths.
	AppName = "latestver"

	// DefaultUserAgent identifies latestver in HTTP requests.
	DefaultUserAgent = "latestver (+https://github.com/nao1215/latestver)"

	// DefaultMaxBodySize limits the listing body that is read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// Config holds all configuration options for latestver.
// It is populated from defaults, the environment and CLI flags, in that
// order, and passed down explicitly.
type Config struct {
	// Timeout is the timeout of each request attempt.
	Timeout time.Duration

	// Retries is how many times a failed request is retried.
	// Only connection errors and 5xx/429 responses are retried.
	Retries int

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// Proxy routes requests through an http(s):// or socks5(h):// proxy.
	Proxy string

	// Headers are sent with every request. Loaded from the targets file.
	Headers map[string]string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default.
	MaxBodySize int64

	// Verbose enables debug logging.
	Verbose bool

	// BatchSize is the number of targets resolved concurrently.
	BatchSize int

	// ConfigFilePath is the path to the targets file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// TargetsFile is the loaded targets file, if any.
	TargetsFile *File

	// Targets is the list of targets to resolve.
	Targets []model.Target

	// JSONReport writes resolutions as JSON. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport writes resolutions as a Markdown table.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path. Empty means stdout.
	ReportFile string

	// DBDir is the directory of the history database.
	// Defaults to the XDG data directory (~/.local/share/latestver on Linux).
	DBDir string

	// SaveToDB records resolutions in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		Retries:     DefaultRetries,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		BatchSize:   DefaultBatchSize,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for latestver.
// On Linux: ~/.local/share/latestver
// On macOS: ~/Library/Application Support/latestver
// On Windows: %LOCALAPPDATA%\latestver
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for latestver.
// On Linux: ~/.config/latestver
// On macOS: ~/Library/Application Support/latestver
// On Windows: %APPDATA%\latestver
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Retries < 0 {
		return ErrInvalidRetries
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	for _, target := range c.Targets {
		if err := target.Validate(); err != nil {
			return fmt.Errorf("invalid target: %w", err)
		}
	}

	return nil
}

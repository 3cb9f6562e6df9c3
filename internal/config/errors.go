package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and the targets file loader,
// and can be checked with errors.Is().
var (
	// ErrNoTarget is returned when there is nothing to resolve.
	ErrNoTarget = errors.New("no target specified: provide URL PREFIX SUFFIX or a targets file")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetries is returned when the retry count is negative.
	ErrInvalidRetries = errors.New("invalid retries: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConfigNotFound is returned when the targets file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrDuplicateTarget is returned when two targets in a file share a name.
	ErrDuplicateTarget = errors.New("duplicate target name")

	// ErrUnknownTarget is returned when a requested target is not in the file.
	ErrUnknownTarget = errors.New("unknown target")

	// ErrInvalidEnvironment is returned when a LATESTVER_* variable cannot be parsed.
	ErrInvalidEnvironment = errors.New("invalid environment variable")
)

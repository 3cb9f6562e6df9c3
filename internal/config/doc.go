// Package config provides the configuration of latestver: runtime options
// with their defaults, LATESTVER_* environment overrides and the YAML targets
// file listing the pages to resolve.
package config

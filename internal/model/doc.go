// Package model defines the data structures shared across latestver.
//
// This package contains the following main types:
//   - Target: A named listing page plus the template of its artifact names
//   - Page: A fetched listing page
//   - Resolution: The outcome of resolving the latest artifact of one Target
//
// The models are serializable to JSON for report output and history storage.
package model

// Package version extracts version numbers from listing text and orders them.
//
// A Template describes how a versioned file name looks in page text: a prefix,
// a regular expression for the version number and a suffix. The package offers
// the four operations needed to resolve the newest artifact of a listing:
//
//   - Extract finds the version inside one chunk of text
//   - Collect runs Extract over every chunk of a page
//   - SelectLatest picks the greatest version by numeric order
//   - Compose builds the artifact location from the selected version
//
// # Ordering
//
// Versions are compared as sequences of non-negative integers, so "1.10.0" sorts
// after "1.9.9". When one sequence is a prefix of the other, the shorter one is
// smaller ("1.2" < "1.2.0").
//
// # Usage
//
//	tmpl, err := version.NewTemplate("mysoftware-", ".tar.gz", "")
//	tokens := tmpl.Collect(chunks)
//	latest, err := version.SelectLatest(tokens)
//	url := tmpl.Compose("https://mysoftware.com/stable/", latest)
package version

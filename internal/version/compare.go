package version

import (
	"cmp"
	"errors"
	"slices"
	"strings"
)

// errNotDigits is the cause of a MalformedVersionError for a component that
// is empty or holds something other than ASCII digits.
var errNotDigits = errors.New("component must be one or more decimal digits")

// Parsed is the numeric form of a version token: one component per
// dot-separated part, kept as decimal digits without leading zeros so that
// components of any width compare correctly.
type Parsed []string

// Parse splits token on "." and checks that every component is a base-10
// non-negative integer.
func Parse(token string) (Parsed, error) {
	parts := strings.Split(token, ".")
	parsed := make(Parsed, 0, len(parts))
	for _, part := range parts {
		if !isDigits(part) {
			return nil, &MalformedVersionError{Token: token, Component: part, Err: errNotDigits}
		}
		n := strings.TrimLeft(part, "0")
		if n == "" {
			n = "0"
		}
		parsed = append(parsed, n)
	}
	return parsed, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String formats p in dotted form without leading zeros.
func (p Parsed) String() string {
	return strings.Join(p, ".")
}

// Compare returns -1 if a < b, 0 if a == b and +1 if a > b.
// The first differing component decides; when one version is a strict prefix
// of the other, the shorter one is smaller.
func Compare(a, b Parsed) int {
	return slices.CompareFunc(a, b, compareComponent)
}

// compareComponent orders two digit strings without leading zeros.
func compareComponent(a, b string) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// SelectLatest returns the greatest token by numeric order.
//
// Among tokens that parse to the same value (e.g. "1.0" and "1.00") the one
// that appears first in tokens is returned. An empty input yields
// ErrNoVersionsFound and a token that does not parse yields a
// *MalformedVersionError.
func SelectLatest(tokens []string) (string, error) {
	if len(tokens) == 0 {
		return "", ErrNoVersionsFound
	}

	best := tokens[0]
	bestParsed, err := Parse(best)
	if err != nil {
		return "", err
	}

	for _, token := range tokens[1:] {
		parsed, err := Parse(token)
		if err != nil {
			return "", err
		}
		if Compare(parsed, bestParsed) > 0 {
			best, bestParsed = token, parsed
		}
	}

	return best, nil
}

// Sort returns a copy of tokens in ascending numeric order.
// Equal versions keep their relative order.
func Sort(tokens []string) ([]string, error) {
	type entry struct {
		token  string
		parsed Parsed
	}

	entries := make([]entry, 0, len(tokens))
	for _, token := range tokens {
		parsed, err := Parse(token)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{token: token, parsed: parsed})
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		return Compare(a.parsed, b.parsed)
	})

	sorted := make([]string, len(entries))
	for i, e := range entries {
		sorted[i] = e.token
	}
	return sorted, nil
}

package version

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"
)

// Constraint restricts which versions are eligible for selection,
// e.g. ">= 1.2, < 2.0" or "~> 3.1".
type Constraint struct {
	expr        string
	constraints goversion.Constraints
}

// NewConstraint parses a comma-separated list of version constraints.
func NewConstraint(expr string) (*Constraint, error) {
	c, err := goversion.NewConstraint(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid version constraint %q: %w", expr, err)
	}
	return &Constraint{expr: expr, constraints: c}, nil
}

// String returns the constraint expression as given.
func (c *Constraint) String() string {
	return c.expr
}

// Allows reports whether token satisfies the constraint.
func (c *Constraint) Allows(token string) (bool, error) {
	v, err := goversion.NewVersion(token)
	if err != nil {
		return false, &MalformedVersionError{Token: token, Component: token, Err: err}
	}
	return c.constraints.Check(v), nil
}

// Filter returns the tokens that satisfy the constraint, preserving order.
func (c *Constraint) Filter(tokens []string) ([]string, error) {
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		ok, err := c.Allows(token)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, token)
		}
	}
	return kept, nil
}

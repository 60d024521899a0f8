// Package pkgs provides the package-requirement value type shared by the
// virtual-environment resolver: an ecosystem-qualified project name plus a
// version constraint.
package pkgs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/YadongOfficial/pkgx/internal/semver"
)

// Requirement is a declared dependency on a project at some version range.
// Requirements carry no identity beyond their fields; consumers treat earlier
// entries in a list as higher priority, so ordering is significant and
// duplicates are never collapsed.
type Requirement struct {
	// Project is the ecosystem-qualified name, e.g. "nodejs.org".
	Project string

	// Constraint is the acceptable version range; defaults to any version.
	Constraint semver.Range
}

// errInvalidRequirement is returned when a requirement string cannot be parsed.
var errInvalidRequirement = errors.New("invalid package requirement")

// Parse parses a requirement in the "project@constraint" grammar.
// A bare "project" means any version.
func Parse(s string) (Requirement, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Requirement{}, errInvalidRequirement
	}

	project, spec, found := strings.Cut(s, "@")
	project = strings.TrimSpace(project)
	if project == "" {
		return Requirement{}, fmt.Errorf("%w: %q", errInvalidRequirement, s)
	}
	if !found || strings.TrimSpace(spec) == "" {
		return Requirement{Project: project, Constraint: semver.AnyRange()}, nil
	}

	constraint, err := semver.ParseRange(spec)
	if err != nil {
		return Requirement{}, fmt.Errorf("%w: %q: %v", errInvalidRequirement, s, err)
	}
	return Requirement{Project: project, Constraint: constraint}, nil
}

// String renders the requirement back into the "project@constraint" grammar.
// Any-version requirements render as the bare project name.
func (r Requirement) String() string {
	if r.Constraint.IsAny() {
		return r.Project
	}
	return r.Project + "@" + r.Constraint.String()
}

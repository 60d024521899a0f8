package semver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Range is a version constraint: a half-open interval [min, max) over
// semantic versions, or the unconstrained "any version" range.
type Range struct {
	raw          string
	any          bool
	min          Version
	max          Version
	unboundedMax bool
}

// errInvalidRange is returned when a constraint string cannot be parsed.
var errInvalidRange = errors.New("invalid version range")

// AnyRange returns the unconstrained range ("*").
func AnyRange() Range {
	return Range{raw: "*", any: true}
}

// IsAny reports whether the range matches every version.
func (r Range) IsAny() bool {
	return r.any
}

// String returns the constraint in the form it was parsed from
// ("*" for the any-version range).
func (r Range) String() string {
	if r.any {
		return "*"
	}
	return r.raw
}

// Satisfies reports whether v falls inside the range.
func (r Range) Satisfies(v Version) bool {
	if r.any {
		return true
	}
	if v.Compare(r.min) < 0 {
		return false
	}
	if r.unboundedMax {
		return true
	}
	return v.Compare(r.max) < 0
}

// ParseRange parses a version constraint string.
//
// Supported forms:
//   - "*" (any version)
//   - "^1", "^1.2", "^1.2.3" (caret: up to the next breaking change)
//   - "~1.2", "~1.2.3" (tilde: up to the next minor)
//   - ">=1.2", ">=1.2 <2" (explicit bounds)
//   - "=1.2.3" (exact)
//   - "1", "1.2", "1.2.3" (bare: pins to the next increment of the most
//     specific component given, so "1.2" means ">=1.2 <1.3")
func ParseRange(s string) (Range, error) {
	raw := strings.TrimSpace(s)
	switch raw {
	case "", "*":
		return AnyRange(), nil
	}

	switch {
	case strings.HasPrefix(raw, "^"):
		parts, err := parseParts(raw[1:])
		if err != nil {
			return Range{}, err
		}
		return Range{raw: raw, min: versionFromParts(parts), max: caretUpper(parts)}, nil

	case strings.HasPrefix(raw, "~"):
		parts, err := parseParts(raw[1:])
		if err != nil {
			return Range{}, err
		}
		return Range{raw: raw, min: versionFromParts(parts), max: tildeUpper(parts)}, nil

	case strings.HasPrefix(raw, ">="):
		return parseBounded(raw)

	case strings.HasPrefix(raw, "="):
		v, err := Parse(raw[1:])
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q", errInvalidRange, raw)
		}
		return Range{raw: raw, min: v, max: Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}}, nil

	default:
		parts, err := parseParts(raw)
		if err != nil {
			return Range{}, err
		}
		return Range{raw: raw, min: versionFromParts(parts), max: bareUpper(parts)}, nil
	}
}

// parseBounded handles ">=A" and ">=A <B" (the space is optional).
func parseBounded(raw string) (Range, error) {
	rest := strings.TrimSpace(raw[2:])
	var lower, upper string
	if i := strings.Index(rest, "<"); i >= 0 {
		lower = strings.TrimSpace(rest[:i])
		upper = strings.TrimSpace(rest[i+1:])
	} else {
		lower = rest
	}

	lowParts, err := parseParts(lower)
	if err != nil {
		return Range{}, err
	}
	r := Range{raw: raw, min: versionFromParts(lowParts), unboundedMax: true}

	if upper != "" {
		upParts, err := parseParts(upper)
		if err != nil {
			return Range{}, err
		}
		r.max = versionFromParts(upParts)
		r.unboundedMax = false
	}
	return r, nil
}

// parseParts parses "X", "X.Y" or "X.Y.Z" into 1–3 integer components.
func parseParts(s string) ([]int, error) {
	s = strings.TrimSpace(strings.TrimPrefix(s, "v"))
	if s == "" {
		return nil, fmt.Errorf("%w: empty version", errInvalidRange)
	}
	fields := strings.Split(s, ".")
	if len(fields) > 3 {
		return nil, fmt.Errorf("%w: %q", errInvalidRange, s)
	}
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q", errInvalidRange, s)
		}
		parts = append(parts, n)
	}
	return parts, nil
}

func versionFromParts(parts []int) Version {
	v := Version{Major: parts[0]}
	if len(parts) > 1 {
		v.Minor = parts[1]
	}
	if len(parts) > 2 {
		v.Patch = parts[2]
	}
	return v
}

// caretUpper computes the exclusive upper bound for a caret constraint:
// the next increment of the leftmost non-zero component.
func caretUpper(parts []int) Version {
	switch {
	case parts[0] > 0 || len(parts) == 1:
		return Version{Major: parts[0] + 1}
	case parts[1] > 0 || len(parts) == 2:
		return Version{Minor: parts[1] + 1}
	default:
		return Version{Patch: parts[2] + 1}
	}
}

// tildeUpper computes the exclusive upper bound for a tilde constraint:
// the next minor (or next major when only the major is given).
func tildeUpper(parts []int) Version {
	if len(parts) == 1 {
		return Version{Major: parts[0] + 1}
	}
	return Version{Major: parts[0], Minor: parts[1] + 1}
}

// bareUpper computes the exclusive upper bound for a bare version:
// the next increment of the most specific component given.
func bareUpper(parts []int) Version {
	switch len(parts) {
	case 1:
		return Version{Major: parts[0] + 1}
	case 2:
		return Version{Major: parts[0], Minor: parts[1] + 1}
	default:
		return Version{Major: parts[0], Minor: parts[1], Patch: parts[2] + 1}
	}
}

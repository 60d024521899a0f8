package virtualenv

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a full ascent yields no resolvable
	// project root.
	ErrNotFound = errors.New("no project root found")

	// ErrParse is returned when a version-pin marker file's content could
	// not be parsed into a package requirement.
	ErrParse = errors.New("malformed marker file")
)

// NotFoundError reports a failed root resolution, carrying the starting
// directory and any configured override root for diagnostics.
type NotFoundError struct {
	Start    string
	Override string
}

func (e *NotFoundError) Error() string {
	if e.Override != "" {
		return fmt.Sprintf("%v: starting at %q (srcroot override %q)", ErrNotFound, e.Start, e.Override)
	}
	return fmt.Sprintf("%v: starting at %q", ErrNotFound, e.Start)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ParseError reports a marker file whose content is malformed, tagged with
// the offending file path.
type ParseError struct {
	File     string
	Start    string
	Override string
	Err      error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%v: %q", ErrParse, e.File)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Start != "" {
		msg += fmt.Sprintf(" (starting at %q", e.Start)
		if e.Override != "" {
			msg += fmt.Sprintf(", srcroot override %q", e.Override)
		}
		msg += ")"
	}
	return msg
}

func (e *ParseError) Unwrap() error { return ErrParse }

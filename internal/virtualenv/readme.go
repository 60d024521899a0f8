package virtualenv

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/YadongOfficial/pkgx/internal/pkgs"
	"github.com/YadongOfficial/pkgx/internal/semver"
)

// The README parser harvests fallback signals from markdown documents: a
// table under a "# Dependencies" header becomes package requirements, and a
// table under "# Metadata" (or, failing that, a trailing version token in
// the first header line) becomes the version.

var (
	// tableSeparatorRx matches a 2- or 3-column markdown table separator.
	tableSeparatorRx = regexp.MustCompile(`^\|(\s*-+\s*\|){2,3}\s*$`)

	// tableRowRx captures the first two columns of a markdown table row.
	tableRowRx = regexp.MustCompile(`^\|([^|]+)\|([^|]+)\|`)

	// anyHeaderRx matches any markdown header line.
	anyHeaderRx = regexp.MustCompile(`^#+\s*(.*?)\s*$`)

	// codeFence marks example snippets; a header directly below one is
	// documentation of this feature, not a declaration.
	codeFence = "```"
)

// parseReadme extracts dependency requirements and a version from a
// markdown document.
func parseReadme(text string) ([]pkgs.Requirement, *semver.Version, error) {
	lines := strings.Split(text, "\n")

	reqs, err := readmeRequirements(lines)
	if err != nil {
		return nil, nil, err
	}
	return reqs, readmeVersion(lines), nil
}

// readmeRequirements converts each row of the "Dependencies" table into a
// requirement, in row order and preserving duplicates. A malformed
// constraint is a failure, not a skip.
func readmeRequirements(lines []string) ([]pkgs.Requirement, error) {
	rows := scanTable(lines, "Dependencies")
	if len(rows) == 0 {
		return nil, nil
	}

	reqs := make([]pkgs.Requirement, 0, len(rows))
	for _, row := range rows {
		constraint, err := semver.ParseRange(row[1])
		if err != nil {
			return nil, fmt.Errorf("dependency %q: %w", row[0], err)
		}
		reqs = append(reqs, pkgs.Requirement{Project: row[0], Constraint: constraint})
	}
	return reqs, nil
}

// readmeVersion finds the version: the first "Metadata" row whose key is
// "version" (case-insensitive) and whose value parses; unparsable rows are
// skipped. Failing that, a trailing semantic-version token in the document's
// first header line. A header with no trailing version token stops the
// fallback scan entirely.
func readmeVersion(lines []string) *semver.Version {
	for _, row := range scanTable(lines, "Metadata") {
		if !strings.EqualFold(row[0], "version") {
			continue
		}
		if v, err := semver.Parse(row[1]); err == nil {
			return &v
		}
	}

	for _, line := range lines {
		m := anyHeaderRx.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		fields := strings.Fields(m[1])
		if len(fields) > 0 {
			token := strings.TrimPrefix(fields[len(fields)-1], "v")
			if v, err := semver.Parse(token); err == nil {
				return &v
			}
		}
		// Only the first header is considered.
		return nil
	}
	return nil
}

// table scan states.
const (
	seekingHeader = iota
	seekingSeparator
	readingRows
)

// scanTable runs a 3-state scan for the table under the given header title
// and returns its (key, value) rows, trimmed.
func scanTable(lines []string, title string) [][2]string {
	headerRx := regexp.MustCompile(`^#+\s*` + regexp.QuoteMeta(title) + `\s*$`)

	var rows [][2]string
	state := seekingHeader
	prev := ""

	for _, line := range lines {
		switch state {
		case seekingHeader:
			if headerRx.MatchString(line) && strings.TrimSpace(prev) != codeFence {
				state = seekingSeparator
			}

		case seekingSeparator:
			switch {
			case strings.TrimSpace(line) == "":
				// keep seeking
			case tableSeparatorRx.MatchString(line):
				state = readingRows
			case tableRowRx.MatchString(line):
				// the column-header row above the separator
			default:
				state = seekingHeader
			}

		case readingRows:
			m := tableRowRx.FindStringSubmatch(line)
			if m == nil {
				// The first non-matching line ends collection entirely.
				return rows
			}
			rows = append(rows, [2]string{strings.TrimSpace(m[1]), strings.TrimSpace(m[2])})
		}
		prev = line
	}
	return rows
}

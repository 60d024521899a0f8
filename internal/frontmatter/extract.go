package frontmatter

import (
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Extract harvests front matter embedded in a foreign-format host file.
//
// Two carriers are recognized:
//   - a comment-fenced YAML block: a "#---" line opens it, a second "#---"
//     closes it, and the lines between (comment leader stripped) are parsed
//     as a front-matter document; go.mod and go.sum use "//" as the leader;
//   - for TOML hosts, a [tool.pkgx] table.
//
// A host file with no embedded block, or with one that fails to parse,
// yields an empty fragment rather than an error: the host format itself is
// never interpreted beyond this, and malformed metadata in somebody else's
// manifest must not break resolution.
func Extract(path string, data []byte) *FrontMatter {
	if fm := extractCommentBlock(path, data); !fm.IsEmpty() {
		return fm
	}
	if isTOML(path) {
		if fm := extractTOMLTable(data); !fm.IsEmpty() {
			return fm
		}
	}
	return &FrontMatter{Env: make(map[string]string)}
}

func commentLeader(path string) string {
	switch filepath.Base(path) {
	case "go.mod", "go.sum":
		return "//"
	default:
		return "#"
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func extractCommentBlock(path string, data []byte) *FrontMatter {
	leader := commentLeader(path)
	fence := leader + "---"

	var (
		block []string
		open  bool
	)
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if !open {
			if trimmed == fence {
				open = true
			}
			continue
		}
		if trimmed == fence {
			fm, err := Parse([]byte(strings.Join(block, "\n")))
			if err != nil {
				return &FrontMatter{}
			}
			return fm
		}
		if !strings.HasPrefix(trimmed, leader) {
			// Block interrupted by a non-comment line; treat as absent.
			return &FrontMatter{}
		}
		content := strings.TrimPrefix(trimmed, leader)
		content = strings.TrimPrefix(content, " ")
		block = append(block, content)
	}
	return &FrontMatter{}
}

// pkgxTable mirrors the [tool.pkgx] table of a TOML manifest.
type pkgxTable struct {
	Tool struct {
		Pkgx map[string]any `toml:"pkgx"`
	} `toml:"tool"`
}

func extractTOMLTable(data []byte) *FrontMatter {
	var t pkgxTable
	if err := toml.Unmarshal(data, &t); err != nil {
		return &FrontMatter{}
	}
	if t.Tool.Pkgx == nil {
		return &FrontMatter{}
	}
	fm, err := FromMap(t.Tool.Pkgx)
	if err != nil {
		return &FrontMatter{}
	}
	return fm
}

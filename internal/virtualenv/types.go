package virtualenv

import (
	"strings"

	"github.com/YadongOfficial/pkgx/internal/config"
	"github.com/YadongOfficial/pkgx/internal/frontmatter"
	"github.com/YadongOfficial/pkgx/internal/pkgs"
	"github.com/YadongOfficial/pkgx/internal/semver"
)

// VirtualEnv is the resolved implicit environment for a starting directory.
// It is constructed once per distinct starting directory, immutable after
// construction, and cached for the remainder of the process.
type VirtualEnv struct {
	// Requirements is ordered closest-to-start first. Duplicates are
	// permitted; downstream consumers treat earlier entries as higher
	// priority.
	Requirements []pkgs.Requirement

	// Teafiles lists the marker files that contributed a requirement,
	// version, or environment entry, in encounter order.
	Teafiles []string

	// SrcRoot is the canonical project root directory.
	SrcRoot string

	// Version is the declared project version, if any marker supplied one.
	Version *semver.Version

	// Env maps environment-variable names to fully expanded values.
	Env map[string]string
}

// accumulator collects per-directory signals during the ascent. It is
// threaded explicitly through every probe call; the merge rules live here.
type accumulator struct {
	requirements []pkgs.Requirement
	teafiles     []string
	env          map[string]string
	version      *semver.Version
	rootHint     string
}

func newAccumulator() *accumulator {
	return &accumulator{env: make(map[string]string)}
}

func (a *accumulator) addRequirement(req pkgs.Requirement) {
	a.requirements = append(a.requirements, req)
}

func (a *accumulator) addTeafile(path string) {
	a.teafiles = append(a.teafiles, path)
}

// setVersion implements the version merge rule: last write in traversal
// order wins, so a version declared in an ancestor directory overwrites one
// declared closer to the start.
func (a *accumulator) setVersion(v semver.Version) {
	a.version = &v
}

// mergeEnv implements the environment merge rule: a new value for an
// existing key is prepended to the old one joined by a colon, so entries
// discovered in ancestor directories take list-precedence in colon-delimited
// values. The key reserved for the installation prefix is never settable by
// a marker.
func (a *accumulator) mergeEnv(key, value string) {
	if key == config.ReservedEnvKey {
		return
	}
	if existing, ok := a.env[key]; ok {
		a.env[key] = value + ":" + existing
		return
	}
	a.env[key] = value
}

// insertFrontMatter appends the fragment's requirements and merges its
// environment entries.
func (a *accumulator) insertFrontMatter(fm *frontmatter.FrontMatter) {
	if fm == nil {
		return
	}
	a.requirements = append(a.requirements, fm.Requirements...)
	for k, v := range fm.Env {
		a.mergeEnv(k, v)
	}
}

// setRootHintIfUnset records a root hint; the first hint set wins.
func (a *accumulator) setRootHintIfUnset(dir string) {
	if a.rootHint == "" {
		a.rootHint = dir
	}
}

// hasProject reports whether any accumulated requirement targets the
// given project.
func (a *accumulator) hasProject(project string) bool {
	for _, req := range a.requirements {
		if strings.EqualFold(req.Project, project) {
			return true
		}
	}
	return false
}

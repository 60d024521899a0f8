package virtualenv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/YadongOfficial/pkgx/internal/frontmatter"
	"github.com/YadongOfficial/pkgx/internal/parser"
	"github.com/YadongOfficial/pkgx/internal/pkgs"
	"github.com/YadongOfficial/pkgx/internal/semver"
)

// probeFunc folds the signals of one matched marker file into the
// accumulator.
type probeFunc func(ctx context.Context, r *Resolver, path string, acc *accumulator) error

// probe is one detector in the marker table. Candidates are tried in listed
// order; the first that exists wins and at most one runs per directory.
type probe struct {
	candidates []string
	dir        bool // candidates must be directories
	skipHome   bool // never runs in the home directory
	run        probeFunc
}

// poetryBackendMarker identifies a Poetry-managed pyproject.toml without
// interpreting the TOML itself.
const poetryBackendMarker = "poetry.core.masonry.api"

// nodeUsingRx matches GitHub Action runtimes of the form "node16", "node20".
var nodeUsingRx = regexp.MustCompile(`^node(\d+)$`)

// probes is the marker catalogue, evaluated in order for every probed
// directory. Directories used only as root hints contribute nothing to the
// teafiles sequence.
var probes = []probe{
	{candidates: []string{"deno.json", "deno.jsonc"}, run: probeDeno},
	{candidates: []string{".node-version"}, run: versionPinProbe("nodejs.org")},
	{candidates: []string{".ruby-version"}, run: versionPinProbe("ruby-lang.org")},
	{candidates: []string{".python-version"}, run: probePythonVersion},
	{candidates: []string{"package.json"}, run: probePackageJSON},
	{candidates: []string{"action.yml", "action.yaml"}, run: probeGitHubAction},
	{candidates: []string{"Cargo.toml", "cargo.toml"}, run: ecosystemProbe("rust-lang.org")},
	{candidates: []string{"go.mod", "go.sum"}, run: ecosystemProbe("go.dev")},
	{candidates: []string{"requirements.txt", "Pipfile", "pipfile", "Pipfile.lock", "pipfile.lock", "setup.py"}, run: ecosystemProbe("python.org")},
	{candidates: []string{"pyproject.toml"}, run: probePyproject},
	{candidates: []string{"Gemfile"}, run: ecosystemProbe("ruby-lang.org")},
	{candidates: []string{"README.md", "README.mdown", "README.markdown"}, run: probeReadme},
	{candidates: []string{".yarnrc"}, skipHome: true, run: plainProbe("classic.yarnpkg.com")},
	{candidates: []string{".yarnrc.yml"}, run: plainProbe("yarnpkg.com")},
	{candidates: []string{"tea.yml", "tea.yaml"}, run: probeTeaYAML},
	{candidates: []string{"VERSION"}, run: probeVersionFile},
	{candidates: []string{".git"}, dir: true, skipHome: true, run: probeGitDir},
	{candidates: []string{".hg", ".svn"}, dir: true, skipHome: true, run: probeVCSDir},
}

// probeDir runs the full marker catalogue against one directory. A failing
// probe aborts the resolution; its error is annotated with the marker file
// responsible.
func (r *Resolver) probeDir(ctx context.Context, dir string, acc *accumulator) error {
	log.Debug("probing directory", "dir", dir)

	for _, p := range probes {
		if p.skipHome && dir == r.cfg.Home {
			continue
		}
		for _, name := range p.candidates {
			path := filepath.Join(dir, name)
			fi, err := r.fs.Stat(ctx, path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return annotateProbeError(err, path)
			}
			if fi.IsDir() != p.dir {
				continue
			}
			log.Debug("marker matched", "file", path)
			if err := p.run(ctx, r, path, acc); err != nil {
				return annotateProbeError(err, path)
			}
			break // first match wins within a probe
		}
	}
	return nil
}

// annotateProbeError tags a probe failure with the marker file responsible,
// unless the error already carries one.
func annotateProbeError(err error, path string) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	return fmt.Errorf("probing %q: %w", path, err)
}

func anyRequirement(project string) pkgs.Requirement {
	return pkgs.Requirement{Project: project, Constraint: semver.AnyRange()}
}

// plainProbe declares a bare any-version requirement for the project.
func plainProbe(project string) probeFunc {
	return func(_ context.Context, _ *Resolver, path string, acc *accumulator) error {
		acc.addRequirement(anyRequirement(project))
		acc.addTeafile(path)
		return nil
	}
}

// ecosystemProbe declares an any-version requirement for the project and
// inserts any front matter embedded in the manifest.
func ecosystemProbe(project string) probeFunc {
	return func(ctx context.Context, r *Resolver, path string, acc *accumulator) error {
		acc.addRequirement(anyRequirement(project))
		acc.addTeafile(path)
		data, err := r.fs.ReadFile(ctx, path)
		if err != nil {
			return err
		}
		acc.insertFrontMatter(frontmatter.Extract(path, data))
		return nil
	}
}

// versionPinProbe reads a single-line version pin (".node-version",
// ".ruby-version"): trimmed content, optional leading "v" stripped, becomes
// a pinned requirement. Unparsable content is a parse error naming the file.
func versionPinProbe(project string) probeFunc {
	return func(ctx context.Context, r *Resolver, path string, acc *accumulator) error {
		data, err := r.fs.ReadFile(ctx, path)
		if err != nil {
			return err
		}
		content := strings.TrimPrefix(strings.TrimSpace(string(data)), "v")
		req, err := pkgs.Parse(project + "@" + content)
		if err != nil {
			return &ParseError{File: path, Err: err}
		}
		acc.addRequirement(req)
		acc.addTeafile(path)
		return nil
	}
}

// probePythonVersion scans a pyenv-style .python-version: the first
// non-empty, non-comment line that parses as a python.org requirement is
// kept; anything else is silently skipped (these files are known to contain
// non-version content).
func probePythonVersion(ctx context.Context, r *Resolver, path string, acc *accumulator) error {
	data, err := r.fs.ReadFile(ctx, path)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		req, err := pkgs.Parse("python.org@" + line)
		if err != nil {
			continue
		}
		acc.addRequirement(req)
		acc.addTeafile(path)
		return nil
	}
	return nil
}

// probeDeno handles deno.json / deno.jsonc: an any-version deno.land
// requirement plus front matter from a "tea" object, if present.
func probeDeno(ctx context.Context, r *Resolver, path string, acc *accumulator) error {
	acc.addRequirement(anyRequirement("deno.land"))
	acc.addTeafile(path)

	m, err := r.parser.ReadMap(ctx, parser.FileConfig{Path: path, Format: parser.FormatJSONC, Field: "tea"})
	if err != nil {
		return err
	}
	if m != nil {
		fm, err := frontmatter.FromMap(m)
		if err != nil {
			return err
		}
		acc.insertFrontMatter(fm)
	}
	return nil
}

// probePackageJSON handles package.json: front matter from a "tea" object,
// an implicit nodejs.org requirement unless bun.sh was already requested,
// and a version overwrite when the "version" field parses.
func probePackageJSON(ctx context.Context, r *Resolver, path string, acc *accumulator) error {
	m, err := r.parser.ReadMap(ctx, parser.FileConfig{Path: path, Format: parser.FormatJSON, Field: "tea"})
	if err != nil {
		return err
	}
	if m != nil {
		fm, err := frontmatter.FromMap(m)
		if err != nil {
			return err
		}
		acc.insertFrontMatter(fm)
	}

	if !acc.hasProject("bun.sh") {
		acc.addRequirement(anyRequirement("nodejs.org"))
	}

	raw, err := r.parser.ReadString(ctx, parser.FileConfig{Path: path, Format: parser.FormatJSON, Field: "version"})
	if err == nil {
		if v, perr := semver.Parse(raw); perr == nil {
			acc.setVersion(v)
		}
	}

	acc.addTeafile(path)
	return nil
}

// probeGitHubAction handles action.yml / action.yaml: a "runs.using" value
// of the form nodeNN becomes a nodejs.org requirement constrained to ^NN.
func probeGitHubAction(ctx context.Context, r *Resolver, path string, acc *accumulator) error {
	using, err := r.parser.ReadString(ctx, parser.FileConfig{Path: path, Format: parser.FormatYAML, Field: "runs.using"})
	if err != nil {
		if errors.Is(err, parser.ErrFieldNotFound) {
			return nil
		}
		return err
	}

	m := nodeUsingRx.FindStringSubmatch(using)
	if m == nil {
		return nil
	}
	constraint, err := semver.ParseRange("^" + m[1])
	if err != nil {
		return err
	}
	acc.addRequirement(pkgs.Requirement{Project: "nodejs.org", Constraint: constraint})
	acc.addTeafile(path)
	return nil
}

// probePyproject handles pyproject.toml: the Poetry build backend marker
// selects python-poetry.org over python.org. The TOML grammar itself is
// never interpreted here; front matter extraction is delegated.
func probePyproject(ctx context.Context, r *Resolver, path string, acc *accumulator) error {
	data, err := r.fs.ReadFile(ctx, path)
	if err != nil {
		return err
	}

	project := "python.org"
	if strings.Contains(string(data), poetryBackendMarker) {
		project = "python-poetry.org"
	}
	acc.addRequirement(anyRequirement(project))
	acc.addTeafile(path)
	acc.insertFrontMatter(frontmatter.Extract(path, data))
	return nil
}

// probeReadme delegates to the markdown table parser. A README that yields
// signals is a teafile; a bare README only hints at the project root.
func probeReadme(ctx context.Context, r *Resolver, path string, acc *accumulator) error {
	data, err := r.fs.ReadFile(ctx, path)
	if err != nil {
		return err
	}

	reqs, version, err := parseReadme(string(data))
	if err != nil {
		return &ParseError{File: path, Err: err}
	}
	if version == nil && len(reqs) == 0 {
		acc.setRootHintIfUnset(filepath.Dir(path))
		return nil
	}

	acc.addTeafile(path)
	for _, req := range reqs {
		acc.addRequirement(req)
	}
	if version != nil {
		acc.setVersion(*version)
	}
	return nil
}

// probeTeaYAML inserts front matter parsed directly from a tea.yml /
// tea.yaml document.
func probeTeaYAML(ctx context.Context, r *Resolver, path string, acc *accumulator) error {
	data, err := r.fs.ReadFile(ctx, path)
	if err != nil {
		return err
	}
	fm, err := frontmatter.Parse(data)
	if err != nil {
		return err
	}
	acc.insertFrontMatter(fm)
	acc.addTeafile(path)
	return nil
}

// probeVersionFile overwrites the accumulated version when a VERSION file
// parses as a semantic version; anything else is ignored.
func probeVersionFile(ctx context.Context, r *Resolver, path string, acc *accumulator) error {
	raw, err := r.parser.ReadString(ctx, parser.FileConfig{Path: path, Format: parser.FormatRaw})
	if err != nil {
		return err
	}
	if v, perr := semver.Parse(raw); perr == nil {
		acc.setVersion(v)
		acc.addTeafile(path)
	}
	return nil
}

// probeGitDir records the directory containing .git as the root hint,
// subject to the configured predicate. Never a teafile.
func probeGitDir(_ context.Context, r *Resolver, path string, acc *accumulator) error {
	if !r.cfg.GitRootHintEnabled() {
		return nil
	}
	acc.setRootHintIfUnset(filepath.Dir(path))
	return nil
}

// probeVCSDir records the directory containing .hg or .svn as the root
// hint. Never a teafile.
func probeVCSDir(_ context.Context, _ *Resolver, path string, acc *accumulator) error {
	acc.setRootHintIfUnset(filepath.Dir(path))
	return nil
}

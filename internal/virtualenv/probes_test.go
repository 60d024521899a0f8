package virtualenv

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"testing"

	"github.com/YadongOfficial/pkgx/internal/config"
	"github.com/YadongOfficial/pkgx/internal/core"
)

func testConfig() *config.Config {
	return &config.Config{Home: "/home/user", Prefix: "/home/user/.pkgx"}
}

func requirementStrings(acc *accumulator) []string {
	out := make([]string, 0, len(acc.requirements))
	for _, req := range acc.requirements {
		out = append(out, req.String())
	}
	return out
}

func probeOne(t *testing.T, fs *core.MockFileSystem, cfg *config.Config, dir string) *accumulator {
	t.Helper()
	acc := newAccumulator()
	if err := New(fs, cfg).probeDir(context.Background(), dir, acc); err != nil {
		t.Fatalf("probeDir(%q) unexpected error: %v", dir, err)
	}
	return acc
}

// statFailFS fails Stat for one path to exercise non-absence probe errors.
type statFailFS struct {
	*core.MockFileSystem
	failPath string
}

func (f statFailFS) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	if path == f.failPath {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrPermission}
	}
	return f.MockFileSystem.Stat(ctx, path)
}

func TestProbe_StatFailurePropagates(t *testing.T) {
	inner := core.NewMockFileSystem()
	inner.SetFile("/p/go.mod", []byte("module demo\n"))
	fsys := statFailFS{MockFileSystem: inner, failPath: "/p/package.json"}

	acc := newAccumulator()
	err := New(fsys, testConfig()).probeDir(context.Background(), "/p", acc)
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("error = %v, want fs.ErrPermission", err)
	}
	if !strings.Contains(err.Error(), "/p/package.json") {
		t.Errorf("error %q does not name the failing path", err)
	}
}

func TestProbe_NodeVersion(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/p/.node-version", []byte("v16.4.2\n"))

	acc := probeOne(t, fs, testConfig(), "/p")

	want := []string{"nodejs.org@16.4.2"}
	if got := requirementStrings(acc); len(got) != 1 || got[0] != want[0] {
		t.Errorf("requirements = %v, want %v", got, want)
	}
	if len(acc.teafiles) != 1 || acc.teafiles[0] != "/p/.node-version" {
		t.Errorf("teafiles = %v, want [/p/.node-version]", acc.teafiles)
	}
}

func TestProbe_NodeVersion_Malformed(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/p/.node-version", []byte("lts/hydrogen\n"))

	acc := newAccumulator()
	err := New(fs, testConfig()).probeDir(context.Background(), "/p", acc)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("error = %v, want ErrParse", err)
	}

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if pe.File != "/p/.node-version" {
		t.Errorf("ParseError.File = %q, want %q", pe.File, "/p/.node-version")
	}
}

func TestProbe_PythonVersion_SkipsJunkStopsAtFirstValid(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/p/.python-version", []byte("# comment\n3.11.4\nbogus\n"))

	acc := probeOne(t, fs, testConfig(), "/p")

	want := []string{"python.org@3.11.4"}
	if got := requirementStrings(acc); len(got) != 1 || got[0] != want[0] {
		t.Errorf("requirements = %v, want %v", got, want)
	}
}

func TestProbe_PythonVersion_AllJunkIsNotAnError(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/p/.python-version", []byte("# only comments\nnonsense\n"))

	acc := probeOne(t, fs, testConfig(), "/p")
	if len(acc.requirements) != 0 || len(acc.teafiles) != 0 {
		t.Errorf("got %v / %v, want nothing", acc.requirements, acc.teafiles)
	}
}

func TestProbe_PackageJSON(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantReqs    []string
		wantVersion string
	}{
		{
			name:        "plain manifest implies nodejs",
			data:        `{"name":"demo","version":"2.3.0"}`,
			wantReqs:    []string{"nodejs.org"},
			wantVersion: "2.3.0",
		},
		{
			name:     "bun in front matter suppresses nodejs",
			data:     `{"tea":{"dependencies":{"bun.sh":"^1"}}}`,
			wantReqs: []string{"bun.sh@^1"},
		},
		{
			name:     "front matter env and deps inserted",
			data:     `{"tea":{"dependencies":{"deno.land":"^1.30"},"env":{"FOO":"bar"}}}`,
			wantReqs: []string{"deno.land@^1.30", "nodejs.org"},
		},
		{
			name:     "unparsable version skipped",
			data:     `{"version":"not semver"}`,
			wantReqs: []string{"nodejs.org"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := core.NewMockFileSystem()
			fs.SetFile("/p/package.json", []byte(tt.data))

			acc := probeOne(t, fs, testConfig(), "/p")

			got := requirementStrings(acc)
			if len(got) != len(tt.wantReqs) {
				t.Fatalf("requirements = %v, want %v", got, tt.wantReqs)
			}
			for i, w := range tt.wantReqs {
				if got[i] != w {
					t.Errorf("requirements[%d] = %q, want %q", i, got[i], w)
				}
			}

			if tt.wantVersion == "" {
				if acc.version != nil {
					t.Errorf("version = %v, want nil", acc.version)
				}
			} else if acc.version == nil || acc.version.String() != tt.wantVersion {
				t.Errorf("version = %v, want %s", acc.version, tt.wantVersion)
			}
		})
	}
}

func TestProbe_PackageJSONFrontMatterOrder(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/p/package.json", []byte(`{"tea":{"dependencies":{"zlib.net":"^1.2","curl.se":"*","aws.amazon.com/cli":"^2"}}}`))

	acc := probeOne(t, fs, testConfig(), "/p")

	// Declared order is priority order; alphabetizing would invert it.
	want := []string{"zlib.net@^1.2", "curl.se", "aws.amazon.com/cli@^2", "nodejs.org"}
	got := requirementStrings(acc)
	if len(got) != len(want) {
		t.Fatalf("requirements = %v, want %v", got, want)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("requirements[%d] = %q, want %q", i, got[i], w)
		}
	}
}

func TestProbe_DenoJSONC(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/p/deno.jsonc", []byte("{\n  // tooling\n  \"tea\": {\"dependencies\": {\"deno.land\": \"^1.30\"}},\n}"))

	acc := probeOne(t, fs, testConfig(), "/p")

	want := []string{"deno.land", "deno.land@^1.30"}
	got := requirementStrings(acc)
	if len(got) != len(want) {
		t.Fatalf("requirements = %v, want %v", got, want)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("requirements[%d] = %q, want %q", i, got[i], w)
		}
	}
}

func TestProbe_DenoJSONPreferredOverJSONC(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/p/deno.json", []byte(`{}`))
	fs.SetFile("/p/deno.jsonc", []byte(`{}`))

	acc := probeOne(t, fs, testConfig(), "/p")
	if len(acc.teafiles) != 1 || acc.teafiles[0] != "/p/deno.json" {
		t.Errorf("teafiles = %v, want [/p/deno.json]", acc.teafiles)
	}
}

func TestProbe_GitHubAction(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantReqs []string
	}{
		{name: "node20", data: "runs:\n  using: node20\n", wantReqs: []string{"nodejs.org@^20"}},
		{name: "composite ignored", data: "runs:\n  using: composite\n", wantReqs: nil},
		{name: "no runs section ignored", data: "name: demo\n", wantReqs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := core.NewMockFileSystem()
			fs.SetFile("/p/action.yml", []byte(tt.data))

			acc := probeOne(t, fs, testConfig(), "/p")
			got := requirementStrings(acc)
			if len(got) != len(tt.wantReqs) {
				t.Fatalf("requirements = %v, want %v", got, tt.wantReqs)
			}
			for i, w := range tt.wantReqs {
				if got[i] != w {
					t.Errorf("requirements[%d] = %q, want %q", i, got[i], w)
				}
			}
		})
	}
}

func TestProbe_Pyproject(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "poetry backend",
			data: "[build-system]\nbuild-backend = \"poetry.core.masonry.api\"\n",
			want: "python-poetry.org",
		},
		{
			name: "plain python",
			data: "[project]\nname = \"demo\"\n",
			want: "python.org",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := core.NewMockFileSystem()
			fs.SetFile("/p/pyproject.toml", []byte(tt.data))

			acc := probeOne(t, fs, testConfig(), "/p")
			got := requirementStrings(acc)
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("requirements = %v, want [%s]", got, tt.want)
			}
		})
	}
}

func TestProbe_GoModFrontMatter(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/p/go.mod", []byte("module demo\n\ngo 1.21\n\n//---\n// env:\n//   CGO_ENABLED: \"0\"\n//---\n"))

	acc := probeOne(t, fs, testConfig(), "/p")

	if got := requirementStrings(acc); len(got) != 1 || got[0] != "go.dev" {
		t.Errorf("requirements = %v, want [go.dev]", got)
	}
	if acc.env["CGO_ENABLED"] != "0" {
		t.Errorf("env[CGO_ENABLED] = %q, want %q", acc.env["CGO_ENABLED"], "0")
	}
}

func TestProbe_YarnrcSkippedAtHome(t *testing.T) {
	cfg := testConfig()
	fs := core.NewMockFileSystem()
	fs.SetFile(cfg.Home+"/.yarnrc", []byte(""))
	fs.SetFile("/p/.yarnrc", []byte(""))

	home := probeOne(t, fs, cfg, cfg.Home)
	if len(home.requirements) != 0 {
		t.Errorf(".yarnrc at home: requirements = %v, want none", home.requirements)
	}

	elsewhere := probeOne(t, fs, cfg, "/p")
	if got := requirementStrings(elsewhere); len(got) != 1 || got[0] != "classic.yarnpkg.com" {
		t.Errorf(".yarnrc elsewhere: requirements = %v, want [classic.yarnpkg.com]", got)
	}
}

func TestProbe_TeaYAML(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/p/tea.yml", []byte("dependencies:\n  go.dev: ^1.21\nenv:\n  GOFLAGS: -trimpath\n"))

	acc := probeOne(t, fs, testConfig(), "/p")

	if got := requirementStrings(acc); len(got) != 1 || got[0] != "go.dev@^1.21" {
		t.Errorf("requirements = %v, want [go.dev@^1.21]", got)
	}
	if acc.env["GOFLAGS"] != "-trimpath" {
		t.Errorf("env[GOFLAGS] = %q, want %q", acc.env["GOFLAGS"], "-trimpath")
	}
	if len(acc.teafiles) != 1 || acc.teafiles[0] != "/p/tea.yml" {
		t.Errorf("teafiles = %v, want [/p/tea.yml]", acc.teafiles)
	}
}

func TestProbe_VersionFile(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/p/VERSION", []byte("9.9.9\n"))

	acc := probeOne(t, fs, testConfig(), "/p")
	if acc.version == nil || acc.version.String() != "9.9.9" {
		t.Errorf("version = %v, want 9.9.9", acc.version)
	}

	fs = core.NewMockFileSystem()
	fs.SetFile("/p/VERSION", []byte("codename-hippo\n"))

	acc = probeOne(t, fs, testConfig(), "/p")
	if acc.version != nil || len(acc.teafiles) != 0 {
		t.Errorf("unparsable VERSION: got (%v, %v), want nothing", acc.version, acc.teafiles)
	}
}

func TestProbe_GitDirRootHint(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetDir("/p/.git")

	acc := probeOne(t, fs, testConfig(), "/p")
	if acc.rootHint != "/p" {
		t.Errorf("rootHint = %q, want %q", acc.rootHint, "/p")
	}
	if len(acc.teafiles) != 0 {
		t.Errorf("teafiles = %v, want none (root hints are not teafiles)", acc.teafiles)
	}
}

func TestProbe_GitDirPredicateDisabled(t *testing.T) {
	disabled := false
	cfg := testConfig()
	cfg.GitRootHint = &disabled

	fs := core.NewMockFileSystem()
	fs.SetDir("/p/.git")

	acc := probeOne(t, fs, cfg, "/p")
	if acc.rootHint != "" {
		t.Errorf("rootHint = %q, want empty with hint disabled", acc.rootHint)
	}
}

func TestProbe_GitDirSkippedAtHome(t *testing.T) {
	cfg := testConfig()
	fs := core.NewMockFileSystem()
	fs.SetDir(cfg.Home + "/.git")

	acc := probeOne(t, fs, cfg, cfg.Home)
	if acc.rootHint != "" {
		t.Errorf("rootHint = %q, want empty at home", acc.rootHint)
	}
}

func TestProbe_HgDirRootHint(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetDir("/p/.hg")

	acc := probeOne(t, fs, testConfig(), "/p")
	if acc.rootHint != "/p" {
		t.Errorf("rootHint = %q, want %q", acc.rootHint, "/p")
	}
}

func TestProbe_ReadmeRootHintWhenNoSignals(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/p/README.md", []byte("# just prose\n"))

	acc := probeOne(t, fs, testConfig(), "/p")
	if acc.rootHint != "/p" {
		t.Errorf("rootHint = %q, want %q", acc.rootHint, "/p")
	}
	if len(acc.teafiles) != 0 {
		t.Errorf("teafiles = %v, want none", acc.teafiles)
	}
}

func TestProbe_ReadmeWithDependenciesIsTeafile(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/p/README.md", []byte("# Dependencies\n| --- | --- |\n| foo | ^1.0.0 |\n| bar | * |\n"))

	acc := probeOne(t, fs, testConfig(), "/p")

	want := []string{"foo@^1.0.0", "bar"}
	got := requirementStrings(acc)
	if len(got) != len(want) {
		t.Fatalf("requirements = %v, want %v", got, want)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("requirements[%d] = %q, want %q", i, got[i], w)
		}
	}
	if len(acc.teafiles) != 1 || acc.teafiles[0] != "/p/README.md" {
		t.Errorf("teafiles = %v, want [/p/README.md]", acc.teafiles)
	}
}

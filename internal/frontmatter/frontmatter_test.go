package frontmatter

import (
	"testing"

	"github.com/goccy/go-yaml"
)

func TestParse_MappingDependencies(t *testing.T) {
	data := []byte(`
dependencies:
  nodejs.org: ^16
  python.org: "*"
env:
  FOO: bar
  PORT: 8080
`)

	fm, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fm.Requirements) != 2 {
		t.Fatalf("len(Requirements) = %d, want 2", len(fm.Requirements))
	}
	if got := fm.Requirements[0].String(); got != "nodejs.org@^16" {
		t.Errorf("Requirements[0] = %q, want %q", got, "nodejs.org@^16")
	}
	if got := fm.Requirements[1].String(); got != "python.org" {
		t.Errorf("Requirements[1] = %q, want %q", got, "python.org")
	}
	if fm.Env["FOO"] != "bar" {
		t.Errorf("Env[FOO] = %q, want %q", fm.Env["FOO"], "bar")
	}
	if fm.Env["PORT"] != "8080" {
		t.Errorf("Env[PORT] = %q, want %q", fm.Env["PORT"], "8080")
	}
}

func TestParse_SequenceDependencies(t *testing.T) {
	data := []byte(`
dependencies:
  - go.dev@^1.21
  - deno.land
`)

	fm, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"go.dev@^1.21", "deno.land"}
	if len(fm.Requirements) != len(want) {
		t.Fatalf("len(Requirements) = %d, want %d", len(fm.Requirements), len(want))
	}
	for i, w := range want {
		if got := fm.Requirements[i].String(); got != w {
			t.Errorf("Requirements[%d] = %q, want %q", i, got, w)
		}
	}
}

func TestParse_Empty(t *testing.T) {
	fm, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fm.IsEmpty() {
		t.Errorf("IsEmpty() = false, want true")
	}
}

func TestParse_BadConstraint(t *testing.T) {
	_, err := Parse([]byte("dependencies:\n  nodejs.org: banana\n"))
	if err == nil {
		t.Fatal("error = nil, want constraint parse error")
	}
}

func TestFromMap(t *testing.T) {
	fm, err := FromMap(map[string]any{
		"dependencies": yaml.MapSlice{
			{Key: "nodejs.org", Value: "^18"},
			{Key: "bun.sh", Value: "*"},
		},
		"env": map[string]any{"NODE_ENV": "production"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Declared order is priority order and must survive.
	want := []string{"nodejs.org@^18", "bun.sh"}
	if len(fm.Requirements) != len(want) {
		t.Fatalf("len(Requirements) = %d, want %d", len(fm.Requirements), len(want))
	}
	for i, w := range want {
		if got := fm.Requirements[i].String(); got != w {
			t.Errorf("Requirements[%d] = %q, want %q", i, got, w)
		}
	}
	if fm.Env["NODE_ENV"] != "production" {
		t.Errorf("Env[NODE_ENV] = %q, want %q", fm.Env["NODE_ENV"], "production")
	}
}

func TestFromMap_OrderedEnv(t *testing.T) {
	fm, err := FromMap(map[string]any{
		"env": yaml.MapSlice{
			{Key: "PORT", Value: 8080},
			{Key: "MODE", Value: "dev"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Env["PORT"] != "8080" {
		t.Errorf("Env[PORT] = %q, want %q", fm.Env["PORT"], "8080")
	}
	if fm.Env["MODE"] != "dev" {
		t.Errorf("Env[MODE] = %q, want %q", fm.Env["MODE"], "dev")
	}
}

func TestExtract_CommentBlock(t *testing.T) {
	data := []byte(`[package]
name = "demo"

#---
# dependencies:
#   openssl.org: ^1.1
# env:
#   RUST_LOG: info
#---
`)

	fm := Extract("/p/Cargo.toml", data)
	if len(fm.Requirements) != 1 || fm.Requirements[0].String() != "openssl.org@^1.1" {
		t.Fatalf("Requirements = %v, want [openssl.org@^1.1]", fm.Requirements)
	}
	if fm.Env["RUST_LOG"] != "info" {
		t.Errorf("Env[RUST_LOG] = %q, want %q", fm.Env["RUST_LOG"], "info")
	}
}

func TestExtract_GoModLeader(t *testing.T) {
	data := []byte(`module example.com/demo

go 1.21

//---
// dependencies:
//   go.dev: ^1.21
//---
`)

	fm := Extract("/p/go.mod", data)
	if len(fm.Requirements) != 1 || fm.Requirements[0].String() != "go.dev@^1.21" {
		t.Fatalf("Requirements = %v, want [go.dev@^1.21]", fm.Requirements)
	}
}

func TestExtract_TOMLTable(t *testing.T) {
	data := []byte(`[project]
name = "demo"

[tool.pkgx]
dependencies = ["python.org@~3.11"]
`)

	fm := Extract("/p/pyproject.toml", data)
	if len(fm.Requirements) != 1 || fm.Requirements[0].String() != "python.org@~3.11" {
		t.Fatalf("Requirements = %v, want [python.org@~3.11]", fm.Requirements)
	}
}

func TestExtract_AbsentOrMalformed(t *testing.T) {
	tests := []struct {
		name string
		path string
		data string
	}{
		{name: "no block", path: "/p/Gemfile", data: "source 'https://rubygems.org'\n"},
		{name: "unterminated block", path: "/p/requirements.txt", data: "#---\n# dependencies:\nrequests\n"},
		{name: "invalid toml ignored", path: "/p/pyproject.toml", data: "[[[broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm := Extract(tt.path, []byte(tt.data))
			if !fm.IsEmpty() {
				t.Errorf("Extract() = %+v, want empty fragment", fm)
			}
		})
	}
}

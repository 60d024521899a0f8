package virtualenv

import "testing"

func TestExpander(t *testing.T) {
	e := expander{home: "/home/alice", srcroot: "/work/proj", prefix: "/home/alice/.pkgx"}

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "srcroot", value: "{{srcroot}}/bin", want: "/work/proj/bin"},
		{name: "home", value: "{{home}}/.cache", want: "/home/alice/.cache"},
		{name: "prefix", value: "{{pkgx.prefix}}/share", want: "/home/alice/.pkgx/share"},
		{name: "multiple tokens", value: "{{srcroot}}:{{home}}", want: "/work/proj:/home/alice"},
		{name: "no tokens", value: "plain", want: "plain"},
		{name: "unknown token passes through", value: "{{mystery}}", want: "{{mystery}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.expand(tt.value); got != tt.want {
				t.Errorf("expand(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestExpander_HostTokens(t *testing.T) {
	e := expander{}

	if got := e.expand("{{host.platform}}"); got == "" || got == "{{host.platform}}" {
		t.Errorf("host.platform not expanded, got %q", got)
	}
	if got := e.expand("{{host.arch}}"); got == "" || got == "{{host.arch}}" {
		t.Errorf("host.arch not expanded, got %q", got)
	}
}

func TestExpander_ExpandAll(t *testing.T) {
	e := expander{srcroot: "/p"}
	env := map[string]string{"A": "{{srcroot}}/x", "B": "plain"}

	out := e.expandAll(env)
	if out["A"] != "/p/x" || out["B"] != "plain" {
		t.Errorf("expandAll() = %v", out)
	}
	if env["A"] != "{{srcroot}}/x" {
		t.Error("expandAll mutated its input")
	}
}

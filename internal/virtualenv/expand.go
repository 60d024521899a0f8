package virtualenv

import (
	"runtime"
	"strings"
)

// expander rewrites placeholder tokens in merged environment values.
// Recognized tokens: {{home}}, {{srcroot}}, {{pkgx.prefix}},
// {{host.platform}} and {{host.arch}}. Unknown tokens pass through
// unchanged.
type expander struct {
	home    string
	srcroot string
	prefix  string
}

func (e expander) expand(value string) string {
	return strings.NewReplacer(
		"{{home}}", e.home,
		"{{srcroot}}", e.srcroot,
		"{{pkgx.prefix}}", e.prefix,
		"{{host.platform}}", hostPlatform(),
		"{{host.arch}}", hostArch(),
	).Replace(value)
}

// expandAll returns a copy of env with every value expanded.
func (e expander) expandAll(env map[string]string) map[string]string {
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[k] = e.expand(v)
	}
	return out
}

func hostPlatform() string {
	return runtime.GOOS
}

// hostArch maps Go architecture names onto the platform spellings package
// metadata uses.
func hostArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86-64"
	case "arm64":
		return "aarch64"
	default:
		return runtime.GOARCH
	}
}

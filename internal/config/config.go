// Package config holds process-wide configuration for the resolver:
// the optional forced project root, the package installation prefix, the
// user's home directory, and tunable probe behavior. Values come from an
// optional YAML file in the home directory overridden by environment
// variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/goccy/go-yaml"
)

const (
	// ConfigFileName is the optional per-user configuration file,
	// looked up in the home directory.
	ConfigFileName = ".pkgx.yaml"

	// EnvSrcRoot forces the project root and bounds the ancestry walk.
	EnvSrcRoot = "PKGX_SRCROOT"

	// EnvPrefix overrides the package installation prefix.
	EnvPrefix = "PKGX_PREFIX"
)

// ReservedEnvKey is the environment key reserved for the installation
// prefix. Marker files may never set it; the merge drops it silently.
const ReservedEnvKey = "PKGX_PREFIX"

// Function variables for testability.
var (
	userHomeDirFn = os.UserHomeDir
	getenvFn      = os.Getenv
	readFileFn    = os.ReadFile
	goosFn        = func() string { return runtime.GOOS }
)

// Config is the main configuration structure for pkgx.
type Config struct {
	// SrcRoot, when non-empty, is the externally pinned project root:
	// the ancestry walk stops there and root resolution returns it
	// unconditionally.
	SrcRoot string `yaml:"srcroot,omitempty"`

	// Prefix is the package installation prefix, used as an expansion
	// token; defaults to ~/.pkgx.
	Prefix string `yaml:"prefix,omitempty"`

	// GitRootHint controls whether a .git directory may set the root
	// hint. When nil the per-OS default applies.
	GitRootHint *bool `yaml:"git-root-hint,omitempty"`

	// Home is the resolved home directory; never read from the file.
	Home string `yaml:"-"`
}

// Load builds the effective configuration: defaults, then the optional
// ~/.pkgx.yaml, then environment variables.
func Load() (*Config, error) {
	home, err := userHomeDirFn()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}

	cfg, err := loadFile(filepath.Join(home, ConfigFileName))
	if err != nil {
		return nil, err
	}
	cfg.Home = home

	if v := getenvFn(EnvSrcRoot); v != "" {
		cfg.SrcRoot = v
	}
	if v := getenvFn(EnvPrefix); v != "" {
		cfg.Prefix = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

// loadFile reads a configuration file; a missing file yields an empty config.
func loadFile(path string) (*Config, error) {
	data, err := readFileFn(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Prefix == "" && c.Home != "" {
		c.Prefix = filepath.Join(c.Home, ".pkgx")
	}
	if c.SrcRoot != "" {
		c.SrcRoot = filepath.Clean(c.SrcRoot)
	}
}

// GitRootHintEnabled reports whether a .git directory may contribute a root
// hint. Defaults to enabled everywhere except Windows, where the directory
// probe is unreliable on some filesystems.
func (c *Config) GitRootHintEnabled() bool {
	if c.GitRootHint != nil {
		return *c.GitRootHint
	}
	return goosFn() != "windows"
}

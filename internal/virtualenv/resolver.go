package virtualenv

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/YadongOfficial/pkgx/internal/config"
	"github.com/YadongOfficial/pkgx/internal/core"
	"github.com/YadongOfficial/pkgx/internal/parser"
)

// Resolver resolves the implicit virtual environment for a directory by
// walking its filesystem ancestry. It owns a result cache whose lifecycle is
// tied to the Resolver instance: resolving the same starting directory twice
// returns the identical record without a second walk.
type Resolver struct {
	fs     core.FileSystem
	cfg    *config.Config
	parser *parser.Reader

	mu    sync.Mutex
	cache map[string]*VirtualEnv
}

// New creates a Resolver over the given filesystem and configuration.
func New(fs core.FileSystem, cfg *config.Config) *Resolver {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Resolver{
		fs:     fs,
		cfg:    cfg,
		parser: parser.NewReader(fs),
		cache:  make(map[string]*VirtualEnv),
	}
}

// Resolve ascends from the starting directory, merges the signals of every
// recognized marker file, and returns the resolved virtual environment.
//
// It fails with a *NotFoundError when no project root can be resolved after
// a full ascent, and with a *ParseError when a version-pin marker file is
// malformed. Resolution is all-or-nothing: no partial result is cached or
// returned.
func (r *Resolver) Resolve(ctx context.Context, dir string) (*VirtualEnv, error) {
	key := filepath.Clean(dir)

	r.mu.Lock()
	if cached, ok := r.cache[key]; ok {
		r.mu.Unlock()
		log.Debug("virtualenv cache hit", "dir", key)
		return cached, nil
	}
	r.mu.Unlock()

	acc := newAccumulator()
	if err := r.ascend(ctx, key, acc); err != nil {
		return nil, r.withContext(err, key)
	}

	root, err := r.resolveRoot(acc)
	if err != nil {
		return nil, &NotFoundError{Start: key, Override: r.cfg.SrcRoot}
	}

	exp := expander{home: r.cfg.Home, srcroot: root, prefix: r.cfg.Prefix}
	venv := &VirtualEnv{
		Requirements: acc.requirements,
		Teafiles:     acc.teafiles,
		SrcRoot:      root,
		Version:      acc.version,
		Env:          exp.expandAll(acc.env),
	}

	log.Debug("virtualenv resolved",
		"dir", key, "srcroot", root,
		"requirements", len(venv.Requirements), "teafiles", len(venv.Teafiles))

	r.mu.Lock()
	r.cache[key] = venv
	r.mu.Unlock()
	return venv, nil
}

// resolveRoot picks the canonical project root after the walk completes:
// the override root unconditionally if configured; otherwise the parent
// directory of the outermost teafile when it is shallower than the recorded
// root hint (or when no hint was recorded at all).
func (r *Resolver) resolveRoot(acc *accumulator) (string, error) {
	if r.cfg.SrcRoot != "" {
		return r.cfg.SrcRoot, nil
	}

	var outerTeafile string
	if n := len(acc.teafiles); n > 0 {
		outerTeafile = filepath.Dir(acc.teafiles[n-1])
	}

	root := acc.rootHint
	if outerTeafile != "" && (root == "" || core.PathDepth(outerTeafile) < core.PathDepth(root)) {
		root = outerTeafile
	}
	if root == "" {
		return "", ErrNotFound
	}
	return root, nil
}

// withContext stamps the starting directory and override root onto a parse
// error escaping the walk.
func (r *Resolver) withContext(err error, start string) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Start = start
		pe.Override = r.cfg.SrcRoot
	}
	return err
}

package virtualenv

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// ascend walks directory-by-directory from start toward the boundary,
// probing each directory in turn.
//
// Boundary rules:
//   - a configured override root terminates the walk the first time the
//     ascent reaches it (that directory is probed, then the walk stops);
//     when the override equals the start, only that directory is probed;
//   - a start equal to the home directory is probed exactly once;
//   - otherwise the home directory and the filesystem root are never
//     probed: the loop condition is checked before each probe.
func (r *Resolver) ascend(ctx context.Context, start string, acc *accumulator) error {
	override := r.cfg.SrcRoot

	if override != "" && override == start {
		return r.probeDir(ctx, start, acc)
	}
	if start == r.cfg.Home {
		return r.probeDir(ctx, start, acc)
	}

	for dir := start; dir != r.cfg.Home && !isFSRoot(dir); dir = filepath.Dir(dir) {
		if err := r.probeDir(ctx, dir, acc); err != nil {
			return err
		}
		if override != "" && dir == override {
			log.Debug("reached srcroot override, stopping ascent", "dir", dir)
			break
		}
	}
	return nil
}

// isFSRoot reports whether dir is the filesystem root ("/" on unix,
// a drive root on windows).
func isFSRoot(dir string) bool {
	return dir == filepath.Dir(dir)
}

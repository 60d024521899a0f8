// Package virtualenv resolves the implicit virtual environment of a working
// directory: the package requirements, environment variables, declared
// version, and canonical project root implied by well-known marker files
// (manifests, lockfiles, version pins, CI descriptors) found while ascending
// from the directory toward the user's home or the filesystem root.
//
// Resolution never installs or verifies anything; it only discovers
// declarations. Signals from each probed directory are merged under a fixed
// precedence policy: requirements append in traversal order, environment
// values for a repeated key are colon-joined with ancestor entries first,
// and a version declared in an ancestor overwrites one declared closer to
// the start.
package virtualenv

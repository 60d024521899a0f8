package core

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileSystem abstracts the filesystem operations the resolver performs.
// All methods are context-first so cancellation propagates through deep walks.
type FileSystem interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Stat(ctx context.Context, path string) (os.FileInfo, error)
}

// OSFileSystem is the production FileSystem backed by the os package.
type OSFileSystem struct{}

func (OSFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (OSFileSystem) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Stat(path)
}

// Ensure OSFileSystem implements FileSystem.
var _ FileSystem = OSFileSystem{}

// MockFileSystem is an in-memory FileSystem for tests.
// Directories are inferred from file paths; SetDir registers an explicit
// (possibly empty) directory such as a .git marker.
type MockFileSystem struct {
	files map[string][]byte
	dirs  map[string]bool
}

// NewMockFileSystem creates an empty MockFileSystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

// SetFile registers a file and all its parent directories.
func (m *MockFileSystem) SetFile(path string, data []byte) {
	path = filepath.Clean(path)
	m.files[path] = data
	m.registerParents(path)
}

// SetDir registers a directory and all its parent directories.
func (m *MockFileSystem) SetDir(path string) {
	path = filepath.Clean(path)
	m.dirs[path] = true
	m.registerParents(path)
}

func (m *MockFileSystem) registerParents(path string) {
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
		if dir == filepath.Dir(dir) {
			return
		}
	}
}

func (m *MockFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return data, nil
}

func (m *MockFileSystem) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path = filepath.Clean(path)
	if data, ok := m.files[path]; ok {
		return mockFileInfo{name: filepath.Base(path), size: int64(len(data))}, nil
	}
	if m.dirs[path] {
		return mockFileInfo{name: filepath.Base(path), dir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
}

var _ FileSystem = (*MockFileSystem)(nil)

// mockFileInfo is a minimal os.FileInfo for MockFileSystem entries.
type mockFileInfo struct {
	name string
	size int64
	dir  bool
}

func (fi mockFileInfo) Name() string { return fi.name }
func (fi mockFileInfo) Size() int64  { return fi.size }
func (fi mockFileInfo) Mode() os.FileMode {
	if fi.dir {
		return os.ModeDir | 0o755
	}
	return 0o644
}
func (fi mockFileInfo) ModTime() time.Time { return time.Time{} }
func (fi mockFileInfo) IsDir() bool        { return fi.dir }
func (fi mockFileInfo) Sys() any           { return nil }

// PathDepth returns the number of path components in a cleaned absolute path.
// "/" has depth 0, "/a/b" has depth 2.
func PathDepth(path string) int {
	path = filepath.Clean(path)
	if path == string(filepath.Separator) || path == "." {
		return 0
	}
	path = strings.TrimPrefix(path, string(filepath.Separator))
	return len(strings.Split(path, string(filepath.Separator)))
}

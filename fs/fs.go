// Package fs abstracts the file access of module resolution, so that tests
// can resolve imports against in-memory files.
package fs

import (
	i_fs "io/fs"
	"os"
	"path/filepath"
	"time"
)

// FS is the file system used by the locator.
type FS interface {
	Stat(name string) (i_fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
}

// osFS implements FS using the underlying os package. This is the default
// implementation used for real file system operations.
type osFS struct{}

// NewOSFS creates a new osFS instance.
func NewOSFS() FS {
	return &osFS{}
}

func (f *osFS) Stat(name string) (i_fs.FileInfo, error) {
	return os.Stat(name)
}

func (f *osFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// MapFS is an in-memory FS keyed by cleaned file path.
type MapFS map[string]string

func (m MapFS) Stat(name string) (i_fs.FileInfo, error) {
	src, ok := m[filepath.Clean(name)]
	if !ok {
		if m.isDir(filepath.Clean(name)) {
			return fileInfo{name: filepath.Base(name), dir: true}, nil
		}
		return nil, &i_fs.PathError{Op: "stat", Path: name, Err: i_fs.ErrNotExist}
	}
	return fileInfo{name: filepath.Base(name), size: int64(len(src))}, nil
}

func (m MapFS) ReadFile(name string) ([]byte, error) {
	src, ok := m[filepath.Clean(name)]
	if !ok {
		return nil, &i_fs.PathError{Op: "open", Path: name, Err: i_fs.ErrNotExist}
	}
	return []byte(src), nil
}

func (m MapFS) isDir(name string) bool {
	prefix := name + string(filepath.Separator)
	for k := range m {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

type fileInfo struct {
	name string
	size int64
	dir  bool
}

func (fi fileInfo) Name() string { return fi.name }
func (fi fileInfo) Size() int64  { return fi.size }
func (fi fileInfo) Mode() i_fs.FileMode {
	if fi.dir {
		return i_fs.ModeDir | 0o555
	}
	return 0o444
}
func (fi fileInfo) ModTime() time.Time { return time.Time{} }
func (fi fileInfo) IsDir() bool        { return fi.dir }
func (fi fileInfo) Sys() any           { return nil }

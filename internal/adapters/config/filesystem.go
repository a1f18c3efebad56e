package config

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem abstracts the filesystem the loader searches for swr.yaml.
type FileSystem interface {
	// Stat returns file info for the given path.
	Stat(path string) (fs.FileInfo, error)
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the standard library.
type OSFS struct{}

// NewOSFS creates a new OSFS instance.
func NewOSFS() *OSFS {
	return &OSFS{}
}

// Stat returns file info for the given path.
func (o *OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads the entire file at path.
func (o *OSFS) ReadFile(path string) ([]byte, error) {
	// #nosec G304 -- path is validated by caller
	return os.ReadFile(path)
}

// MountFS serves config files from an fs.FS mounted at an absolute root,
// such as an embedded default config or an fstest.MapFS.
type MountFS struct {
	fsys fs.FS
	root string
}

// NewMountFS mounts fsys at root.
func NewMountFS(root string, fsys fs.FS) *MountFS {
	return &MountFS{fsys: fsys, root: filepath.Clean(root)}
}

// Stat returns file info for the given path.
func (m *MountFS) Stat(path string) (fs.FileInfo, error) {
	name, err := m.resolve("stat", path)
	if err != nil {
		return nil, err
	}
	return fs.Stat(m.fsys, name)
}

// ReadFile reads the entire file at path.
func (m *MountFS) ReadFile(path string) ([]byte, error) {
	name, err := m.resolve("read", path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(m.fsys, name)
}

// resolve maps an absolute path below the mount root to an fs.FS name.
func (m *MountFS) resolve(op, path string) (string, error) {
	rel, err := filepath.Rel(m.root, filepath.Clean(path))
	if err != nil {
		return "", &fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist}
	}
	name := filepath.ToSlash(rel)
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist}
	}
	return name, nil
}

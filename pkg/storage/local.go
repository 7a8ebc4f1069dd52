package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage is a storage implementation that stores files on the local
// filesystem.
type LocalStorage struct {
	root string
}

var _ Storage = (*LocalStorage)(nil)

// NewLocalStorage creates a new LocalStorage.
func NewLocalStorage(root string) *LocalStorage {
	return &LocalStorage{root: root}
}

// Root returns the storage root directory.
func (l *LocalStorage) Root() string {
	return l.root
}

// Open implements Storage.
func (l *LocalStorage) Open(name string) (Object, error) {
	name, err := l.fixPath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", name, err)
	}
	return f, nil
}

// Stat implements Storage.
func (l *LocalStorage) Stat(name string) (fs.FileInfo, error) {
	name, err := l.fixPath(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %s: %w", name, err)
	}
	return info, nil
}

// Put implements Storage. The data is written to a temporary file in the
// destination directory which then replaces the destination.
func (l *LocalStorage) Put(name string, r io.Reader) (int64, error) {
	name, err := l.fixPath(name)
	if err != nil {
		return 0, err
	}
	dir := filepath.Dir(name)
	// MkdirAll succeeds when the directory already exists, including when
	// another goroutine created it concurrently.
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", name, err)
	}

	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create file %s: %w", name, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp) // nolint: errcheck

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close() // nolint: errcheck
		return n, fmt.Errorf("failed to copy data to file %s: %w", name, err)
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close() // nolint: errcheck
		return n, fmt.Errorf("failed to set mode of file %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("failed to write file %s: %w", name, err)
	}
	if err := os.Rename(tmp, name); err != nil {
		return n, fmt.Errorf("failed to rename %s to %s: %w", tmp, name, err)
	}
	return n, nil
}

// Exists implements Storage.
func (l *LocalStorage) Exists(name string) (bool, error) {
	name, err := l.fixPath(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check existence of file %s: %w", name, err)
}

// fixPath converts a slash separated name to a path below the root.
func (l *LocalStorage) fixPath(name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, name)
	}
	path := filepath.Join(l.root, filepath.FromSlash(name))
	if err := EnsureWithin(l.root, path); err != nil {
		return "", fmt.Errorf("%w: %s", err, name)
	}
	return path, nil
}

// EnsureWithin ensures that path is root itself or below it.
func EnsureWithin(root, path string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ErrOutsideRoot
	}
	return nil
}

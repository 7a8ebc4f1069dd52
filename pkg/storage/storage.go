// Package storage stores files under a root directory.
package storage

import (
	"errors"
	"io"
	"io/fs"
)

// ErrOutsideRoot is returned when a name resolves to a path outside of the
// storage root.
var ErrOutsideRoot = errors.New("path is outside of the storage root")

// Object is a stored file opened for reading.
type Object interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Closer
	Stat() (fs.FileInfo, error)
}

// Storage stores files by slash separated name.
type Storage interface {
	Open(name string) (Object, error)
	Stat(name string) (fs.FileInfo, error)
	// Put replaces the named file with the contents of r. Readers never
	// observe a partially written file.
	Put(name string, r io.Reader) (int64, error)
	Exists(name string) (bool, error)
}

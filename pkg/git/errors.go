package git

import "errors"

var (
	// ErrRepositoryNotFound is returned when the given path has no object
	// database.
	ErrRepositoryNotFound = errors.New("repository not found")
	// ErrCorruptRepository is returned when the reference store cannot be read
	// or a reference does not resolve to a commit.
	ErrCorruptRepository = errors.New("corrupt repository")
	// ErrCorruptObject is returned when a stored object cannot be decoded.
	ErrCorruptObject = errors.New("corrupt object")
	// ErrGraphCycleDetected is returned when a commit is its own ancestor.
	ErrGraphCycleDetected = errors.New("commit graph cycle detected")
	// ErrFileNotFound is returned when a file is not found.
	ErrFileNotFound = errors.New("file not found")
	// ErrStop stops a ForEach iteration without an error.
	ErrStop = errors.New("stop iteration")
)

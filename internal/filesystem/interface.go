// Package filesystem abstracts file operations so ingestion, export and
// token persistence can be tested against an in-memory implementation.
package filesystem

import (
	"io/fs"
)

// FileSystem provides an abstraction over the file operations docforge
// performs: reading sources, walking folders, and writing exports and
// persisted state.
type FileSystem interface {
	// File operations
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	Remove(path string) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	WalkDir(root string, fn fs.WalkDirFunc) error

	// Path operations
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) bool
	Getwd() (string, error)
}

// Package storage locates note files on disk and gives read access to them.
package storage

import (
	"io"

	"github.com/starford/linkorg/internal/models"
)

// Provider is the interface for read-only access to the notes directory.
type Provider interface {
	// List returns metadata for every candidate note under dir (relative to the notes root).
	List(dir string) ([]models.FileMeta, error)
	// Open returns a reader for the note at path (relative to the notes root).
	Open(path string) (io.ReadCloser, error)
	// Abs resolves path against the notes root.
	Abs(path string) (string, error)
}

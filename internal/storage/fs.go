package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/linkorg/internal/apperr"
	"github.com/starford/linkorg/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the notes directory
}

var _ Provider = (*FS)(nil)

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute notes directory.
func (f *FS) Root() string { return f.root }

// safePath resolves a relative path against the notes root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s: %w", rel, apperr.ErrInvalidPath)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes notes root: %s: %w", rel, apperr.ErrInvalidPath)
	}
	return abs, nil
}

// Abs resolves a relative path against the notes root.
func (f *FS) Abs(path string) (string, error) {
	return f.safePath(path)
}

// List walks dir (relative to root) and returns metadata for every candidate
// note. It never reads file contents, so a file that cannot be opened is
// still listed and fails later, on its own, when it is opened.
func (f *FS) List(dir string) ([]models.FileMeta, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	paths, err := Discover(base)
	if err != nil {
		return nil, err
	}
	out := make([]models.FileMeta, 0, len(paths))
	for _, p := range paths {
		rel, _ := filepath.Rel(f.root, p)
		d, _ := models.DialectFromExt(filepath.Ext(p))
		meta := models.FileMeta{Path: filepath.ToSlash(rel), Dialect: d}
		if info, err := os.Stat(p); err == nil {
			meta.UpdatedAt = info.ModTime()
		}
		out = append(out, meta)
	}
	return out, nil
}

// Open returns a reader for the note at path.
func (f *FS) Open(path string) (io.ReadCloser, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Missing is still unreadable for batch callers; hosts see not found.
			return nil, fmt.Errorf("storage: open %s: %w (%w)", path, apperr.ErrNotFound, apperr.ErrUnreadable)
		}
		return nil, fmt.Errorf("storage: open %s: %w %w", path, apperr.ErrUnreadable, err)
	}
	return file, nil
}

// Discover returns every .org and .md file under root, at any depth, in
// lexical walk order. Each file appears exactly once. Sub-directories that
// cannot be read are skipped; only a failure on root itself is returned.
func Discover(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == root {
				return walkErr
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := models.DialectFromExt(filepath.Ext(d.Name())); ok {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: discover %s: %w", root, err)
	}
	return out, nil
}

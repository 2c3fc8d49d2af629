// Package upload stores attachment files on disk and hands out opaque
// references. The relay treats references as pass-through strings; only the
// HTTP layer resolves them back to bytes.
package upload

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
)

// ErrInvalidRef is returned for references that do not name a stored file.
var ErrInvalidRef = errors.New("upload: invalid attachment reference")

// Storage writes uploads under a single directory.
type Storage struct {
	dir string
}

// NewStorage creates the upload directory if needed.
func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Storage{dir: dir}, nil
}

// Save stores the file bytes and returns the attachment reference. The
// reference embeds the original filename so downloads keep a usable name.
func (s *Storage) Save(filename string, r io.Reader) (string, error) {
	ref := ulid.Make().String() + "_" + sanitizeFilename(filename)

	f, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	return ref, nil
}

// Path resolves a reference to the stored file's path, rejecting anything
// that escapes the upload directory.
func (s *Storage) Path(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) || strings.Contains(ref, "..") {
		return "", ErrInvalidRef
	}

	path := filepath.Join(s.dir, ref)
	if _, err := os.Stat(path); err != nil {
		return "", ErrInvalidRef
	}
	return path, nil
}

// sanitizeFilename keeps only the base name and replaces path-hostile runes.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '|', '\x00':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}

// Package storage keeps uploaded media on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidName is returned for names that would escape the media root.
var ErrInvalidName = errors.New("invalid media file name")

// Local stores flat files under Dir and serves them below URLPrefix.
type Local struct {
	Dir       string
	URLPrefix string
}

func NewLocal(dir, urlPrefix string) *Local {
	return &Local{Dir: dir, URLPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

// Save writes data to name, creating the media root when needed.
func (l *Local) Save(name string, data []byte) error {
	full, err := l.Path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(l.Dir, 0o750); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}
	return os.WriteFile(full, data, 0o600)
}

// Remove deletes name. A missing file is not an error.
func (l *Local) Remove(name string) error {
	full, err := l.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether name is stored.
func (l *Local) Exists(name string) bool {
	full, err := l.Path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// Path resolves name inside the media root. Names must be a single path element.
func (l *Local) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	return filepath.Join(l.Dir, name), nil
}

// URL is the public address of name.
func (l *Local) URL(name string) string {
	return path.Join(l.URLPrefix, name)
}

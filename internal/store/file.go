package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/afero"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileKV implements domain.KVStore with one file per key on an afero
// filesystem. Writes go to a temp file and are renamed into place.
type FileKV struct {
	fs  afero.Fs
	dir string
}

// NewFileKV creates a file store rooted at dir on fs.
func NewFileKV(fs afero.Fs, dir string) (*FileKV, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileKV{fs: fs, dir: dir}, nil
}

// NewOSFileKV creates a file store on the real filesystem.
func NewOSFileKV(dir string) (*FileKV, error) {
	return NewFileKV(afero.NewOsFs(), dir)
}

func (s *FileKV) path(key string) string {
	// Sanitize key for filename
	return filepath.Join(s.dir, unsafeKeyChars.ReplaceAllString(key, "_")+".json")
}

// Read returns the value stored under key.
func (s *FileKV) Read(key string) ([]byte, bool, error) {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return data, true, nil
}

// Write stores data under key.
func (s *FileKV) Write(key string, data []byte) error {
	target := s.path(key)
	tmp := target + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		s.fs.Remove(tmp)
		return fmt.Errorf("failed to commit %q: %w", key, err)
	}
	return nil
}

// Close is a no-op; files are closed after every operation.
func (s *FileKV) Close() error {
	return nil
}

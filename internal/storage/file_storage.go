package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileStorage manages destination files inside the output directory.
type FileStorage struct {
	dir string
}

// NewFileStorage creates dir (including parents) if it does not exist and
// resolves it to an absolute, symlink-free path. This happens once, before
// any worker starts.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory %s: %w", dir, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve symlinks in %s: %w", abs, err)
	}

	return &FileStorage{dir: resolved}, nil
}

// Dir returns the resolved output directory.
func (s *FileStorage) Dir() string {
	return s.dir
}

// Path returns the absolute destination path for filename.
func (s *FileStorage) Path(filename string) string {
	return filepath.Join(s.dir, filename)
}

// CreateFile creates (or truncates) filename in the output directory.
func (s *FileStorage) CreateFile(filename string) (*os.File, error) {
	return os.Create(s.Path(filename))
}

// FileExists checks whether a file exists in the output directory.
func (s *FileStorage) FileExists(filename string) bool {
	_, err := os.Stat(s.Path(filename))
	return err == nil
}

// GetFileSize returns the size of the file in bytes.
func (s *FileStorage) GetFileSize(filename string) (int64, error) {
	info, err := os.Stat(s.Path(filename))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

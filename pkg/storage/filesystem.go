package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideBase is returned when a filename escapes the storage root.
var ErrOutsideBase = errors.New("storage: path escapes base directory")

// LocalStorage keeps uploaded documents on the local filesystem. All
// filenames are interpreted relative to the base directory and are
// rejected when they would resolve outside of it.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage creates the base directory if needed.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve uploads directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{baseDir: abs}, nil
}

// SaveStream writes the reader contents to filename below the base dir.
func (ls *LocalStorage) SaveStream(filename string, r io.Reader) (string, error) {
	target, err := ls.resolve(filename)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close() //nolint:errcheck
		os.Remove(target)
		return "", fmt.Errorf("write upload stream: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("flush upload file: %w", err)
	}
	return filename, nil
}

// Open returns a read-only handle for a stored file.
func (ls *LocalStorage) Open(filename string) (*os.File, error) {
	target, err := ls.resolve(filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	return f, nil
}

// Delete removes a stored file. Missing files are not an error.
func (ls *LocalStorage) Delete(filename string) error {
	target, err := ls.resolve(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

func (ls *LocalStorage) resolve(filename string) (string, error) {
	target := filepath.Join(ls.baseDir, filepath.Clean("/"+filename))
	if target != ls.baseDir && !strings.HasPrefix(target, ls.baseDir+string(filepath.Separator)) {
		return "", ErrOutsideBase
	}
	return target, nil
}

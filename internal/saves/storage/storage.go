package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Probe is the outcome of an existence check. A probe that fails returns an error
// alongside NotFound; callers must not read that as "missing".
type Probe int

const (
	NotFound Probe = iota
	Found
)

func (p Probe) String() string {
	if p == Found {
		return "found"
	}
	return "not found"
}

// Storage provides the file operations used against save directories.
type Storage struct {
	fs afero.Fs
}

// New creates a new Storage instance.
func New(fs afero.Fs) *Storage {
	return &Storage{fs: fs}
}

// FileSystem returns the underlying filesystem.
func (s *Storage) FileSystem() afero.Fs {
	return s.fs
}

// ValidatePathSafety checks that the path is not a symlink.
// It returns nil if the path doesn't exist or is a regular file/directory.
func (s *Storage) ValidatePathSafety(path string) error {
	if lstater, ok := s.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("failed to check path: %w", err)
		}

		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("refusing to operate on symlink: %s", path)
		}
	}
	return nil
}

// Probe reports whether path exists.
func (s *Storage) Probe(path string) (Probe, error) {
	if _, err := s.fs.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NotFound, nil
		}
		return NotFound, fmt.Errorf("stat %s: %w", path, err)
	}
	return Found, nil
}

// CopyFileExclusive copies src to dst and fails with an error matching os.ErrExist
// when dst is already present. A partially written destination is removed.
func (s *Storage) CopyFileExclusive(src, dst string) (err error) {
	if err := s.ValidatePathSafety(src); err != nil {
		return fmt.Errorf("validate source: %w", err)
	}

	source, err := s.fs.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() {
		if cerr := source.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close source: %w", cerr)
		}
	}()

	if err := s.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	dest, err := s.fs.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	_, copyErr := io.Copy(dest, source)
	closeErr := dest.Close()

	if copyErr != nil {
		return s.discard(dst, fmt.Errorf("copy data: %w", copyErr))
	}
	if closeErr != nil {
		return s.discard(dst, fmt.Errorf("close destination: %w", closeErr))
	}
	return nil
}

// ReadFile reads the entire file.
func (s *Storage) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(s.fs, path)
}

// WriteFile replaces the contents of path with data.
func (s *Storage) WriteFile(path string, data []byte) error {
	if err := s.ValidatePathSafety(path); err != nil {
		return err
	}
	return afero.WriteFile(s.fs, path, data, 0o644)
}

// WriteFileAtomic writes data to a temporary file next to path and renames it over
// path, so a failed write leaves the previous contents in place.
func (s *Storage) WriteFileAtomic(path string, data []byte) error {
	if err := s.ValidatePathSafety(path); err != nil {
		return err
	}

	tmp := path + ".tmp"
	file, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	_, writeErr := file.Write(data)
	closeErr := file.Close()
	if writeErr != nil {
		return s.discard(tmp, fmt.Errorf("write temporary file: %w", writeErr))
	}
	if closeErr != nil {
		return s.discard(tmp, fmt.Errorf("close temporary file: %w", closeErr))
	}

	if err := s.fs.Rename(tmp, path); err != nil {
		return s.discard(tmp, fmt.Errorf("replace %s: %w", path, err))
	}
	return nil
}

// discard removes a partially written file and folds a failed removal into cause.
func (s *Storage) discard(path string, cause error) error {
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Join(cause, fmt.Errorf("remove %s: %w", path, err))
	}
	return cause
}

// Remove deletes a file.
func (s *Storage) Remove(path string) error {
	if err := s.ValidatePathSafety(path); err != nil {
		return err
	}
	return s.fs.Remove(path)
}

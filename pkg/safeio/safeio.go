package safeio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrPathTraversal is returned when a user-supplied path escapes its base.
var ErrPathTraversal = errors.New("path traversal detected")

// CleanUserPath cleans a user-provided path and rejects traversal attempts.
// Returns paths with forward slashes for cross-platform consistency.
func CleanUserPath(p string) (string, error) {
	c := filepath.ToSlash(filepath.Clean(p))
	for _, seg := range strings.Split(c, "/") {
		if seg == ".." {
			return "", ErrPathTraversal
		}
	}
	return c, nil
}

// CleanRelativeName validates a name used as a file stem below a managed
// directory (release identifiers, cache keys). The name must be non-empty,
// relative and free of traversal.
func CleanRelativeName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("name is empty")
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("name %q must be relative", name)
	}
	c, err := CleanUserPath(name)
	if err != nil {
		return "", fmt.Errorf("name %q: %w", name, err)
	}
	if c == "." {
		return "", fmt.Errorf("name %q resolves to the base directory", name)
	}
	return c, nil
}

// ReadFileContained reads a file only if it is contained within baseDir.
// This prevents path traversal attacks by ensuring the file path resolves
// to a location within the specified base directory.
func ReadFileContained(fs afero.Fs, baseDir, filePath string) ([]byte, error) {
	baseClean := filepath.Clean(baseDir)
	fileClean := filepath.Clean(filePath)

	rel, err := filepath.Rel(baseClean, fileClean)
	if err != nil {
		return nil, errors.New("failed to compute relative path")
	}
	if strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return nil, errors.New("file path is outside base directory")
	}

	// #nosec G304 -- fileClean has been verified to be contained within baseClean
	return afero.ReadFile(fs, fileClean)
}

// WriteFileAtomic writes data to path through a temp file in the same
// directory followed by a rename, so readers never observe a partial file.
// Parent directories are created as needed. An existing file's mode is
// preserved; new files get 0644.
func WriteFileAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	var mode os.FileMode = 0o644
	if st, err := fs.Stat(path); err == nil {
		mode = st.Mode() & 0o777
		if mode == 0 {
			mode = 0o644
		}
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = fs.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := fs.Chmod(tmpName, mode); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotDirectory is returned when a sync root exists but is not a directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrNestedRoots is returned when the source and output roots overlap.
	ErrNestedRoots = errors.New("source and output directories overlap")
	// ErrLogInsideRoot is returned when the log file would live in a sync
	// root, where every cycle would copy or delete it.
	ErrLogInsideRoot = errors.New("log file inside the source or output directory")
)

// ValidateDirectory checks that path exists and is a directory, and returns
// its absolute, symlink-resolved form.
func ValidateDirectory(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory %s: %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: %w", path, ErrNotDirectory)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return resolved, nil
}

// PrepareLogFile creates the parent directory of the log file and opens it
// for appending.
func PrepareLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, errors.New("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// CheckDisjoint rejects roots that are the same directory or nested inside
// one another. Both paths must already be absolute and cleaned.
func CheckDisjoint(src, dst string) error {
	if within(src, dst) || within(dst, src) {
		return fmt.Errorf("%s and %s: %w", src, dst, ErrNestedRoots)
	}
	return nil
}

// CheckLogPath rejects a log file path that lies inside either root. The
// roots must be absolute and symlink-resolved, as ValidateDirectory returns
// them. The log file and its parents need not exist yet.
func CheckLogPath(path, src, dst string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	resolved := resolveExisting(abs)
	if within(src, resolved) || within(dst, resolved) {
		return fmt.Errorf("%s: %w", path, ErrLogInsideRoot)
	}
	return nil
}

// resolveExisting resolves symlinks in the longest existing prefix of the
// absolute path abs and appends the rest unchanged.
func resolveExisting(abs string) string {
	rest := ""
	for dir := abs; ; dir = filepath.Dir(dir) {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(resolved, rest)
		}
		if parent := filepath.Dir(dir); parent == dir {
			return abs
		}
		rest = filepath.Join(filepath.Base(dir), rest)
	}
}

// within reports whether path is root or lies below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

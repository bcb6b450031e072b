// Package lock keeps two dirmirror processes from mirroring into the same
// destination at once.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the destination lock.
var ErrLocked = errors.New("destination is locked by another dirmirror process")

// Lock is a held instance lock.
type Lock struct {
	flock *flock.Flock
}

// Dir returns the directory lock files are kept in.
func Dir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "dirmirror")
	}
	return filepath.Join(os.TempDir(), "dirmirror")
}

// PathFor returns the lock file path guarding the absolute destination dst.
// It lives outside dst so the mirror never sees it.
func PathFor(dst string) string {
	id := strconv.FormatUint(xxhash.Sum64String(filepath.Clean(dst)), 16)
	return filepath.Join(Dir(), id+".lock")
}

// Acquire takes the lock for dst without blocking.
func Acquire(dst string) (*Lock, error) {
	path := PathFor(dst)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", dst, ErrLocked)
	}
	return &Lock{flock: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.flock.Path() }

// Release unlocks the lock file. The file itself stays: unlinking it would
// let a later process lock a fresh inode while another still holds the old.
func (l *Lock) Release() error {
	if !l.flock.Locked() {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", l.flock.Path(), err)
	}
	return nil
}

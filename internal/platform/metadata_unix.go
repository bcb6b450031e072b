//go:build unix

package platform

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// SetMetadata applies permission bits and access/modification times to an
// open file. The file must have been opened by path so f.Name() resolves.
func SetMetadata(f *os.File, md Metadata) error {
	if err := unix.Fchmod(int(f.Fd()), uint32(md.Mode.Perm())); err != nil {
		return fmt.Errorf("fchmod %s: %w", f.Name(), err)
	}

	times := []unix.Timespec{
		unix.NsecToTimespec(md.AccTime.UnixNano()),
		unix.NsecToTimespec(md.ModTime.UnixNano()),
	}
	if err := unix.UtimesNanoAt(unix.AT_FDCWD, f.Name(), times, 0); err != nil {
		return fmt.Errorf("utimensat %s: %w", f.Name(), err)
	}
	return nil
}

package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bamsammich/dirmirror/internal/platform"
)

// tmpSuffix marks in-flight copies. A leftover from a killed process has no
// source counterpart, so the next cycle's deletion pass removes it.
const tmpSuffix = ".dirmirror-tmp"

// maxTmpBase keeps temp names under NAME_MAX for long file names.
const maxTmpBase = 200

func tempPath(dst string) string {
	base := filepath.Base(dst)
	if len(base) > maxTmpBase {
		base = base[:maxTmpBase]
	}
	name := fmt.Sprintf(".%s.%s%s", base, uuid.New().String()[:8], tmpSuffix)
	return filepath.Join(filepath.Dir(dst), name)
}

// copyFile replaces dst with a copy of src. Data goes to a temp file in
// dst's directory which receives src's permission bits and timestamps and
// is then renamed over dst, so dst is never observed half-written.
func copyFile(src, dst string) (int64, error) {
	srcFd, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", src, err)
	}
	defer srcFd.Close()

	info, err := srcFd.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", src, err)
	}

	tmpPath := tempPath(dst)
	tmpFd, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return 0, fmt.Errorf("create tmp %s: %w", tmpPath, err)
	}
	defer func() {
		_ = os.Remove(tmpPath) // no-op if rename succeeded
	}()

	result, err := platform.CopyFile(platform.CopyFileParams{
		Src:  srcFd,
		Dst:  tmpFd,
		Size: info.Size(),
	})
	if err != nil {
		tmpFd.Close()
		return 0, fmt.Errorf("copy data %s: %w", src, err)
	}

	if err := platform.SetMetadata(tmpFd, platform.MetadataOf(info)); err != nil {
		tmpFd.Close()
		return 0, fmt.Errorf("set metadata %s: %w", dst, err)
	}

	if err := tmpFd.Close(); err != nil {
		return 0, fmt.Errorf("close tmp %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return 0, fmt.Errorf("rename %s -> %s: %w", tmpPath, dst, err)
	}
	return result.BytesWritten, nil
}

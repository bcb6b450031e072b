//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// CopyFile copies with copy_file_range(2) when the kernel and filesystems
// allow it and falls back to pread/pwrite otherwise.
func CopyFile(params CopyFileParams) (CopyResult, error) {
	preallocate(params.Dst, params.Size)

	result, err := copyFileRange(params)
	if err == nil {
		return result, trimTail(params, result)
	}
	// The fallback rewrites from offset 0, so a partial kernel copy is
	// simply overwritten.
	if !isFallbackErr(err) {
		return result, err
	}
	result, err = copyReadWrite(params)
	if err != nil {
		return result, err
	}
	return result, trimTail(params, result)
}

// trimTail drops preallocated space past the bytes actually copied, which
// happens when the source shrank after it was stat'ed.
func trimTail(params CopyFileParams, result CopyResult) error {
	if result.BytesWritten >= params.Size {
		return nil
	}
	return params.Dst.Truncate(result.BytesWritten)
}

func copyFileRange(params CopyFileParams) (CopyResult, error) {
	remaining := params.Size
	var roff, woff int64

	var totalWritten int64
	for remaining > 0 {
		n, err := unix.CopyFileRange(
			int(params.Src.Fd()), &roff,
			int(params.Dst.Fd()), &woff,
			int(min(remaining, 1<<30)), 0,
		)
		if err != nil {
			return CopyResult{BytesWritten: totalWritten, Method: CopyFileRange}, err
		}
		if n == 0 {
			break
		}
		remaining -= int64(n)
		totalWritten += int64(n)
	}

	return CopyResult{BytesWritten: totalWritten, Method: CopyFileRange}, nil
}

// preallocate reserves disk space for the copy. fallocate is advisory and
// unsupported on some filesystems, so errors are ignored.
func preallocate(fd *os.File, size int64) {
	if size <= 0 {
		return
	}
	_ = unix.Fallocate(int(fd.Fd()), 0, 0, size) //nolint:errcheck // advisory
}

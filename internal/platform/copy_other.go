//go:build unix && !linux

package platform

// CopyFile uses pread/pwrite on platforms without copy_file_range(2).
func CopyFile(params CopyFileParams) (CopyResult, error) {
	return copyReadWrite(params)
}

// Package platform holds the OS-specific pieces of writing a mirrored file:
// moving bytes between descriptors and carrying metadata across.
package platform

import (
	"os"
	"time"
)

// CopyMethod identifies which syscall/strategy was used for a copy.
type CopyMethod int

const (
	ReadWrite     CopyMethod = iota
	CopyFileRange            // Linux copy_file_range(2)
)

func (m CopyMethod) String() string {
	switch m {
	case ReadWrite:
		return "read_write"
	case CopyFileRange:
		return "copy_file_range"
	default:
		return "unknown"
	}
}

// CopyResult reports the outcome of a copy operation.
type CopyResult struct {
	BytesWritten int64
	Method       CopyMethod
}

// CopyFileParams describes what to copy. Both descriptors must be open;
// Src for reading and Dst for writing. Size is the number of bytes to copy
// starting at offset 0 of each file.
type CopyFileParams struct {
	Src  *os.File
	Dst  *os.File
	Size int64
}

// Metadata is the subset of source metadata carried onto a copy.
type Metadata struct {
	ModTime time.Time
	AccTime time.Time
	Mode    os.FileMode
}

// MetadataOf extracts the metadata to preserve from a source stat result.
func MetadataOf(info os.FileInfo) Metadata {
	return Metadata{
		Mode:    info.Mode().Perm(),
		ModTime: info.ModTime(),
		AccTime: AccessTime(info),
	}
}

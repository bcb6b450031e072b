package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrSpecialFile marks entries (fifos, sockets, devices) whose content
// cannot be mirrored by copying bytes.
var ErrSpecialFile = errors.New("special file")

// Kind classifies a directory entry.
type Kind int

const (
	File Kind = iota + 1
	Dir
	Symlink
	Special
)

var kindNames = [...]string{
	File:    "file",
	Dir:     "directory",
	Symlink: "symlink",
	Special: "special",
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func kindOf(mode os.FileMode) Kind {
	switch {
	case mode.IsRegular():
		return File
	case mode.IsDir():
		return Dir
	case mode&os.ModeSymlink != 0:
		return Symlink
	default:
		return Special
	}
}

// Entry is one immediate child of a listed directory.
type Entry struct {
	ModTime time.Time
	Name    string
	Size    int64
	Mode    os.FileMode
	Kind    Kind
}

// ListEntries returns the immediate children of dir keyed by name. It never
// descends and never follows symlinks.
func ListEntries(dir string) (map[string]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("readdir %s: %w", dir, err)
	}

	entries := make(map[string]Entry, len(des))
	for _, d := range des {
		info, err := d.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", filepath.Join(dir, d.Name()), err)
		}
		entries[d.Name()] = Entry{
			Name:    d.Name(),
			Kind:    kindOf(info.Mode()),
			Mode:    info.Mode(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
	}
	return entries, nil
}

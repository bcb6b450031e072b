package event

import (
	"time"

	"github.com/bamsammich/dirmirror/internal/stats"
)

// Type identifies the kind of event.
type Type int

const (
	CycleStarted Type = iota + 1
	CycleCompleted
	CycleFailed
	DirCreated
	FileCopied
	FileOverwritten
	DirDeleted
	FileDeleted
	EntryReplaced
	EntrySkipped
	FileUnchanged
)

var typeNames = [...]string{
	CycleStarted:    "CycleStarted",
	CycleCompleted:  "CycleCompleted",
	CycleFailed:     "CycleFailed",
	DirCreated:      "DirCreated",
	FileCopied:      "FileCopied",
	FileOverwritten: "FileOverwritten",
	DirDeleted:      "DirDeleted",
	FileDeleted:     "FileDeleted",
	EntryReplaced:   "EntryReplaced",
	EntrySkipped:    "EntrySkipped",
	FileUnchanged:   "FileUnchanged",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Mutation reports whether events of this type change the destination tree.
func (t Type) Mutation() bool {
	switch t {
	case DirCreated, FileCopied, FileOverwritten, DirDeleted, FileDeleted, EntryReplaced:
		return true
	}
	return false
}

// Event is a single audit record produced by the engine.
type Event struct {
	Timestamp time.Time
	Error     error
	Src       string // absolute source path, when one is involved
	Dst       string // absolute destination path
	Path      string // path relative to the sync root
	Kind      string // kind of the entry being materialised
	PrevKind  string // kind of the destination entry being replaced
	Stats     stats.Snapshot
	Type      Type
	Size      int64
	Cycle     int
	Interval  time.Duration
	Elapsed   time.Duration
	DryRun    bool
}

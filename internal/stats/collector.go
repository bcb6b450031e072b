package stats

import (
	"fmt"
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

// Collector counts the work done by one sync cycle. Counters are atomic so a
// snapshot can be taken while a cycle is running.
type Collector struct {
	dirsScanned      atomic.Int64
	dirsCreated      atomic.Int64
	dirsDeleted      atomic.Int64
	filesCopied      atomic.Int64
	filesOverwritten atomic.Int64
	filesUnchanged   atomic.Int64
	filesDeleted     atomic.Int64
	entriesReplaced  atomic.Int64
	entriesSkipped   atomic.Int64
	bytesCopied      atomic.Int64
	bytesHashed      atomic.Int64
}

// NewCollector creates a zeroed Collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) AddDirsScanned(n int64)      { c.dirsScanned.Add(n) }
func (c *Collector) AddDirsCreated(n int64)      { c.dirsCreated.Add(n) }
func (c *Collector) AddDirsDeleted(n int64)      { c.dirsDeleted.Add(n) }
func (c *Collector) AddFilesCopied(n int64)      { c.filesCopied.Add(n) }
func (c *Collector) AddFilesOverwritten(n int64) { c.filesOverwritten.Add(n) }
func (c *Collector) AddFilesUnchanged(n int64)   { c.filesUnchanged.Add(n) }
func (c *Collector) AddFilesDeleted(n int64)     { c.filesDeleted.Add(n) }
func (c *Collector) AddEntriesReplaced(n int64)  { c.entriesReplaced.Add(n) }
func (c *Collector) AddEntriesSkipped(n int64)   { c.entriesSkipped.Add(n) }
func (c *Collector) AddBytesCopied(n int64)      { c.bytesCopied.Add(n) }
func (c *Collector) AddBytesHashed(n int64)      { c.bytesHashed.Add(n) }

// Reset zeroes every counter. The driver calls it at the start of each cycle.
func (c *Collector) Reset() {
	for _, v := range []*atomic.Int64{
		&c.dirsScanned, &c.dirsCreated, &c.dirsDeleted,
		&c.filesCopied, &c.filesOverwritten, &c.filesUnchanged, &c.filesDeleted,
		&c.entriesReplaced, &c.entriesSkipped,
		&c.bytesCopied, &c.bytesHashed,
	} {
		v.Store(0)
	}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	DirsScanned      int64
	DirsCreated      int64
	DirsDeleted      int64
	FilesCopied      int64
	FilesOverwritten int64
	FilesUnchanged   int64
	FilesDeleted     int64
	EntriesReplaced  int64
	EntriesSkipped   int64
	BytesCopied      int64
	BytesHashed      int64
}

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		DirsScanned:      c.dirsScanned.Load(),
		DirsCreated:      c.dirsCreated.Load(),
		DirsDeleted:      c.dirsDeleted.Load(),
		FilesCopied:      c.filesCopied.Load(),
		FilesOverwritten: c.filesOverwritten.Load(),
		FilesUnchanged:   c.filesUnchanged.Load(),
		FilesDeleted:     c.filesDeleted.Load(),
		EntriesReplaced:  c.entriesReplaced.Load(),
		EntriesSkipped:   c.entriesSkipped.Load(),
		BytesCopied:      c.bytesCopied.Load(),
		BytesHashed:      c.bytesHashed.Load(),
	}
}

// Mutations is the number of structural changes applied to the destination.
func (s Snapshot) Mutations() int64 {
	return s.DirsCreated + s.DirsDeleted +
		s.FilesCopied + s.FilesOverwritten + s.FilesDeleted +
		s.EntriesReplaced
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"dirs=%d created=%d copied=%d overwritten=%d unchanged=%d deleted=%d replaced=%d skipped=%d bytes=%s",
		s.DirsScanned, s.DirsCreated, s.FilesCopied, s.FilesOverwritten, s.FilesUnchanged,
		s.FilesDeleted+s.DirsDeleted, s.EntriesReplaced, s.EntriesSkipped,
		FormatBytes(s.BytesCopied),
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	if b < 0 {
		b = 0
	}
	return humanize.IBytes(uint64(b))
}

package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/bamsammich/dirmirror/internal/event"
	"github.com/bamsammich/dirmirror/internal/filter"
	"github.com/bamsammich/dirmirror/internal/stats"
)

// Options configures a Reconciler.
type Options struct {
	Recorder Recorder
	Stats    *stats.Collector
	Filter   *filter.Chain
	Hasher   Hasher
	DryRun   bool
}

// Reconciler makes a destination tree an exact mirror of a source tree.
// It keeps no state between calls to Reconcile; everything is derived from
// the filesystem on each run.
type Reconciler struct {
	opts Options
}

// NewReconciler creates a Reconciler. A nil Recorder discards events and a
// nil Stats gets a fresh collector.
func NewReconciler(opts Options) *Reconciler {
	if opts.Recorder == nil {
		opts.Recorder = discardRecorder{}
	}
	if opts.Stats == nil {
		opts.Stats = stats.NewCollector()
	}
	return &Reconciler{opts: opts}
}

// Stats returns the collector the reconciler counts into.
func (r *Reconciler) Stats() *stats.Collector { return r.opts.Stats }

// dirPair is one directory level awaiting reconciliation.
type dirPair struct {
	src string
	dst string
	rel string
	// planned marks a destination directory a dry run would have created.
	// It does not exist on disk and is treated as empty.
	planned bool
	// finish marks the post-visit entry that applies perm to dst once the
	// subtree below it is reconciled.
	finish bool
	perm   os.FileMode
}

// ownerRWX is kept on destination directories while they are being filled.
const ownerRWX os.FileMode = 0o700

func (p dirPair) child(name string) dirPair {
	return dirPair{
		src: filepath.Join(p.src, name),
		dst: filepath.Join(p.dst, name),
		rel: filepath.Join(p.rel, name),
	}
}

// Reconcile mirrors the directory src onto the directory dst. Both must
// exist. Directories are processed depth-first from an explicit stack. The
// first error aborts the run; mutations applied before it are kept and the
// next run converges from wherever this one stopped.
func (r *Reconciler) Reconcile(ctx context.Context, src, dst string) error {
	stack := []dirPair{{src: src, dst: dst}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := len(stack) - 1
		pair := stack[n]
		stack = stack[:n]

		if pair.finish {
			if err := r.finishDir(pair); err != nil {
				return err
			}
			continue
		}

		subdirs, err := r.syncDir(ctx, pair)
		if err != nil {
			return err
		}
		// Reverse push so subdirectories pop in name order. Each one's
		// finish entry sits below it and pops after its whole subtree.
		for i := len(subdirs) - 1; i >= 0; i-- {
			done := subdirs[i]
			done.finish = true
			stack = append(stack, done, subdirs[i])
		}
	}
	return nil
}

// syncDir reconciles one directory level and returns the subdirectory pairs
// still to be visited.
func (r *Reconciler) syncDir(ctx context.Context, pair dirPair) ([]dirPair, error) {
	r.opts.Stats.AddDirsScanned(1)

	srcEntries, err := ListEntries(pair.src)
	if err != nil {
		return nil, err
	}
	dstEntries := map[string]Entry{}
	if !pair.planned {
		if dstEntries, err = ListEntries(pair.dst); err != nil {
			return nil, err
		}
	}

	srcNames := r.visible(pair, srcEntries)
	dstNames := r.visible(pair, dstEntries)

	// Deletions complete before anything in this directory is created.
	if err := r.deleteExtraneous(pair, dstNames.Difference(srcNames), dstEntries); err != nil {
		return nil, err
	}

	var subdirs []dirPair
	for _, name := range sortedNames(srcNames) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		de, exists := dstEntries[name]
		sub, err := r.syncEntry(pair.child(name), srcEntries[name], de, exists)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			subdirs = append(subdirs, *sub)
		}
	}
	return subdirs, nil
}

// syncEntry brings one destination entry in line with its source. It
// returns a non-nil pair when the entry is a directory to descend into.
func (r *Reconciler) syncEntry(p dirPair, se, de Entry, exists bool) (*dirPair, error) {
	if se.Kind == Special {
		// Specials are not mirrored, so nothing may stand under their name.
		if exists {
			if err := r.deleteEntry(p, de); err != nil {
				return nil, err
			}
		}
		r.skip(p, se)
		return nil, nil
	}

	if exists && de.Kind != se.Kind {
		if err := r.replace(p, de, se); err != nil {
			return nil, err
		}
		exists = false
	}

	switch se.Kind {
	case Dir:
		if exists {
			if err := r.openDir(p, de); err != nil {
				return nil, err
			}
		} else {
			if err := r.createDir(p); err != nil {
				return nil, err
			}
			p.planned = r.opts.DryRun
		}
		p.perm = se.Mode.Perm()
		return &p, nil
	case Symlink:
		return nil, r.syncLeaf(p, se, de, exists, r.writeSymlink)
	default:
		return nil, r.syncLeaf(p, se, de, exists, r.writeFile)
	}
}

// visible returns the names of entries the filter lets through.
func (r *Reconciler) visible(pair dirPair, entries map[string]Entry) mapset.Set[string] {
	names := mapset.NewThreadUnsafeSetWithSize[string](len(entries))
	for name, e := range entries {
		if r.opts.Filter.Match(filepath.Join(pair.rel, name), e.Kind == Dir) {
			names.Add(name)
		}
	}
	return names
}

func sortedNames(names mapset.Set[string]) []string {
	out := names.ToSlice()
	slices.Sort(out)
	return out
}

// createDir creates the destination directory owner-writable. The source's
// permission bits are applied by finishDir once the directory is filled.
func (r *Reconciler) createDir(p dirPair) error {
	if !r.opts.DryRun {
		if err := os.Mkdir(p.dst, ownerRWX); err != nil {
			return fmt.Errorf("mkdir %s: %w", p.dst, err)
		}
	}
	r.opts.Stats.AddDirsCreated(1)
	r.record(event.Event{
		Type: event.DirCreated,
		Src:  p.src,
		Dst:  p.dst,
		Path: p.rel,
		Kind: Dir.String(),
	})
	return nil
}

// openDir makes an existing destination directory owner-writable so its
// entries can be changed. A previous run may have left it read-only.
func (r *Reconciler) openDir(p dirPair, de Entry) error {
	perm := de.Mode.Perm()
	if r.opts.DryRun || perm&ownerRWX == ownerRWX {
		return nil
	}
	if err := os.Chmod(p.dst, perm|ownerRWX); err != nil {
		return fmt.Errorf("chmod %s: %w", p.dst, err)
	}
	return nil
}

// finishDir applies the source directory's permission bits to its mirror.
// Chmod rather than Mkdir's mode so the umask does not narrow them.
func (r *Reconciler) finishDir(p dirPair) error {
	if r.opts.DryRun || p.planned {
		return nil
	}
	if err := os.Chmod(p.dst, p.perm); err != nil {
		return fmt.Errorf("chmod %s: %w", p.dst, err)
	}
	return nil
}

// replace removes a destination entry whose kind differs from the source
// entry of the same name, so the source kind can be materialised in its place.
func (r *Reconciler) replace(p dirPair, de, se Entry) error {
	if !r.opts.DryRun {
		if err := removeEntry(p.dst, de.Kind); err != nil {
			return err
		}
	}
	r.opts.Stats.AddEntriesReplaced(1)
	r.record(event.Event{
		Type:     event.EntryReplaced,
		Src:      p.src,
		Dst:      p.dst,
		Path:     p.rel,
		Kind:     se.Kind.String(),
		PrevKind: de.Kind.String(),
	})
	return nil
}

// syncLeaf creates or overwrites a file or symlink. An existing destination
// is only rewritten when its fingerprint differs from the source's.
func (r *Reconciler) syncLeaf(p dirPair, se, de Entry, exists bool, write func(dirPair, bool) (int64, error)) error {
	typ := event.FileCopied
	if exists {
		same, err := r.sameContent(p, se, de)
		if err != nil {
			return err
		}
		if same {
			r.opts.Stats.AddFilesUnchanged(1)
			r.record(event.Event{
				Type: event.FileUnchanged,
				Src:  p.src,
				Dst:  p.dst,
				Path: p.rel,
				Kind: se.Kind.String(),
				Size: se.Size,
			})
			return nil
		}
		typ = event.FileOverwritten
	}

	size := se.Size
	if !r.opts.DryRun {
		n, err := write(p, exists)
		if err != nil {
			return err
		}
		size = n
	}

	if typ == event.FileOverwritten {
		r.opts.Stats.AddFilesOverwritten(1)
	} else {
		r.opts.Stats.AddFilesCopied(1)
	}
	r.opts.Stats.AddBytesCopied(size)
	r.record(event.Event{
		Type: typ,
		Src:  p.src,
		Dst:  p.dst,
		Path: p.rel,
		Kind: se.Kind.String(),
		Size: size,
	})
	return nil
}

// sameContent compares source and destination by fingerprint. Regular
// files of different sizes cannot match and are not read.
func (r *Reconciler) sameContent(p dirPair, se, de Entry) (bool, error) {
	if se.Kind == File && se.Size != de.Size {
		return false, nil
	}

	srcFP, n, err := r.opts.Hasher.File(p.src)
	r.opts.Stats.AddBytesHashed(n)
	if err != nil {
		return false, err
	}
	dstFP, n, err := r.opts.Hasher.File(p.dst)
	r.opts.Stats.AddBytesHashed(n)
	if err != nil {
		return false, err
	}
	return srcFP.Equal(dstFP), nil
}

func (*Reconciler) writeFile(p dirPair, _ bool) (int64, error) {
	return copyFile(p.src, p.dst)
}

func (*Reconciler) writeSymlink(p dirPair, exists bool) (int64, error) {
	target, err := os.Readlink(p.src)
	if err != nil {
		return 0, fmt.Errorf("readlink %s: %w", p.src, err)
	}
	if exists {
		if err := removeEntry(p.dst, Symlink); err != nil {
			return 0, err
		}
	}
	if err := os.Symlink(target, p.dst); err != nil {
		return 0, fmt.Errorf("symlink %s -> %s: %w", p.dst, target, err)
	}
	return int64(len(target)), nil
}

func (r *Reconciler) skip(p dirPair, se Entry) {
	r.opts.Stats.AddEntriesSkipped(1)
	r.record(event.Event{
		Type:  event.EntrySkipped,
		Src:   p.src,
		Dst:   p.dst,
		Path:  p.rel,
		Kind:  se.Kind.String(),
		Error: ErrSpecialFile,
	})
}

func (r *Reconciler) record(ev event.Event) {
	ev.Timestamp = time.Now()
	ev.DryRun = r.opts.DryRun
	r.opts.Recorder.Record(ev)
}

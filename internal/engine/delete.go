package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/bamsammich/dirmirror/internal/event"
)

// deleteExtraneous removes the named destination entries, which exist in
// the destination directory but not in its source. Directories go with
// their whole subtree.
func (r *Reconciler) deleteExtraneous(pair dirPair, names mapset.Set[string], dstEntries map[string]Entry) error {
	for _, name := range sortedNames(names) {
		if err := r.deleteEntry(pair.child(name), dstEntries[name]); err != nil {
			return err
		}
	}
	return nil
}

// deleteEntry removes one destination entry and records the deletion.
func (r *Reconciler) deleteEntry(p dirPair, de Entry) error {
	if !r.opts.DryRun {
		if err := removeEntry(p.dst, de.Kind); err != nil {
			return err
		}
	}

	typ := event.FileDeleted
	if de.Kind == Dir {
		typ = event.DirDeleted
		r.opts.Stats.AddDirsDeleted(1)
	} else {
		r.opts.Stats.AddFilesDeleted(1)
	}
	r.record(event.Event{
		Type: typ,
		Dst:  p.dst,
		Path: p.rel,
		Kind: de.Kind.String(),
	})
	return nil
}

// removeEntry deletes path, recursively for directories. An entry that is
// already gone is not an error.
func removeEntry(path string, kind Kind) error {
	var err error
	if kind == Dir {
		if err = unlockTree(path); err == nil {
			err = os.RemoveAll(path)
		}
	} else {
		err = os.Remove(path)
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// unlockTree gives the owner full access to every directory under root so
// their children can be unlinked. WalkDir visits a directory before reading
// it, so the chmod lands in time.
func unlockTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if perm := info.Mode().Perm(); perm&ownerRWX != ownerRWX {
			return os.Chmod(path, perm|ownerRWX)
		}
		return nil
	})
}

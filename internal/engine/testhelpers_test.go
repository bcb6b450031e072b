package engine

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bamsammich/dirmirror/internal/event"
)

// eventLog is a Recorder that keeps every event for inspection.
type eventLog struct {
	mu     sync.Mutex
	events []event.Event
}

func (l *eventLog) Record(ev event.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) all() []event.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]event.Event(nil), l.events...)
}

// mutations returns the mutation events recorded so far.
func (l *eventLog) mutations() []event.Event {
	var out []event.Event
	for _, ev := range l.all() {
		if ev.Type.Mutation() {
			out = append(out, ev)
		}
	}
	return out
}

// count returns how many events of typ were recorded.
func (l *eventLog) count(typ event.Type) int {
	n := 0
	for _, ev := range l.all() {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func (l *eventLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

// writeTestFile creates parent directories as needed and writes content.
func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// unlockOnCleanup restores owner access to every directory under roots
// before the temp dir cleanup runs, so read-only trees can be removed.
func unlockOnCleanup(t *testing.T, roots ...string) {
	t.Helper()
	t.Cleanup(func() {
		for _, root := range roots {
			_ = unlockTree(root)
		}
	})
}

// createTestTree populates root with:
//
//	root.txt
//	.hidden
//	big.bin            (320KB)
//	sub/mid.txt
//	sub/deep/leaf.txt
//	sub/empty/
//	link.txt           → root.txt (symlink)
func createTestTree(t *testing.T, root string) {
	t.Helper()
	writeTestFile(t, filepath.Join(root, "root.txt"), "root file content")
	writeTestFile(t, filepath.Join(root, ".hidden"), "dotfile")
	big := make([]byte, 320*1024)
	for i := range big {
		big[i] = byte('A' + i%16)
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.bin"), big, 0o644))
	writeTestFile(t, filepath.Join(root, "sub", "mid.txt"), "middle file content")
	writeTestFile(t, filepath.Join(root, "sub", "deep", "leaf.txt"), "leaf file content")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "empty"), 0o755))
	require.NoError(t, os.Symlink("root.txt", filepath.Join(root, "link.txt")))
}

type treeNode struct {
	kind    Kind
	content string // file bytes or symlink target
}

// snapshotTree maps every relative path under root to its kind and content.
func snapshotTree(t *testing.T, root string) map[string]treeNode {
	t.Helper()
	out := map[string]treeNode{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		node := treeNode{kind: kindOf(info.Mode())}
		switch node.kind {
		case File:
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			node.content = string(data)
		case Symlink:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			node.content = target
		}
		out[rel] = node
		return nil
	})
	require.NoError(t, err)
	return out
}

// requireMirror fails unless dst has the same names, kinds and content as src.
func requireMirror(t *testing.T, src, dst string) {
	t.Helper()
	require.Equal(t, snapshotTree(t, src), snapshotTree(t, dst))
}

// newTestRoots returns fresh, existing source and destination directories.
func newTestRoots(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.MkdirAll(dst, 0o755))
	return src, dst
}

package engine

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub", "deep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "nested.txt"), []byte("n"), 0o644))
	require.NoError(t, os.Symlink("sub", filepath.Join(dir, "link")))

	entries, err := ListEntries(dir)
	require.NoError(t, err)

	require.Len(t, entries, 4, "listing must not descend")
	assert.Equal(t, File, entries["a.txt"].Kind)
	assert.Equal(t, int64(5), entries["a.txt"].Size)
	assert.Equal(t, File, entries[".hidden"].Kind)
	assert.Equal(t, Dir, entries["sub"].Kind)
	assert.Equal(t, Symlink, entries["link"].Kind, "symlink to a directory is not a directory")
	assert.Equal(t, "link", entries["link"].Name)
}

func TestListEntriesSpecial(t *testing.T) {
	dir := t.TempDir()
	fifo := filepath.Join(dir, "pipe")
	if err := syscall.Mkfifo(fifo, 0o644); err != nil {
		t.Skipf("mkfifo unsupported: %v", err)
	}

	entries, err := ListEntries(dir)
	require.NoError(t, err)
	assert.Equal(t, Special, entries["pipe"].Kind)
}

func TestListEntriesMissing(t *testing.T) {
	_, err := ListEntries(filepath.Join(t.TempDir(), "gone"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestListEntriesEmpty(t *testing.T) {
	entries, err := ListEntries(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "file", File.String())
	assert.Equal(t, "directory", Dir.String())
	assert.Equal(t, "symlink", Symlink.String())
	assert.Equal(t, "special", Special.String())
	assert.Equal(t, "unknown", Kind(0).String())
}

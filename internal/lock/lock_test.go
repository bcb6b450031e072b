package lock_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/dirmirror/internal/lock"
)

func TestAcquire_Exclusive(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	l, err := lock.Acquire("/srv/mirror")
	require.NoError(t, err)
	assert.FileExists(t, l.Path())

	_, err = lock.Acquire("/srv/mirror")
	assert.ErrorIs(t, err, lock.ErrLocked)

	require.NoError(t, l.Release())
	assert.FileExists(t, l.Path(), "the lock file outlives the lock")

	l2, err := lock.Acquire("/srv/mirror")
	require.NoError(t, err)
	assert.Equal(t, l.Path(), l2.Path())
	require.NoError(t, l2.Release())
}

func TestAcquire_DistinctDestinations(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	a, err := lock.Acquire("/srv/a")
	require.NoError(t, err)
	defer a.Release()

	b, err := lock.Acquire("/srv/b")
	require.NoError(t, err)
	defer b.Release()

	assert.NotEqual(t, a.Path(), b.Path())
}

func TestPathFor(t *testing.T) {
	runtime := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", runtime)

	p := lock.PathFor("/srv/mirror/")
	assert.Equal(t, filepath.Join(runtime, "dirmirror"), filepath.Dir(p))
	assert.Equal(t, p, lock.PathFor("/srv/mirror"), "trailing slash does not change the lock")
	assert.Equal(t, ".lock", filepath.Ext(p))
}

func TestRelease_Twice(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	l, err := lock.Acquire("/srv/twice")
	require.NoError(t, err)
	require.NoError(t, l.Release())
	assert.NoError(t, l.Release())
}

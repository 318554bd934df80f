package guard

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecondGuardSeesHolder(t *testing.T) {
	dir := t.TempDir()
	first := New("cimianboot-test-holder", "Acme Suite", dir)
	second := New("cimianboot-test-holder", "Other Product", dir)

	running, holder, err := first.Acquire()
	require.NoError(t, err)
	assert.False(t, running)
	assert.Empty(t, holder)

	data, err := os.ReadFile(first.MarkerPath())
	require.NoError(t, err)
	assert.Equal(t, "Acme Suite", string(data))

	running, holder, err = second.Acquire()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, "Acme Suite", holder)

	require.NoError(t, first.Release())
	_, err = os.Stat(first.MarkerPath())
	assert.True(t, os.IsNotExist(err), "marker should be removed on release")

	running, _, err = second.Acquire()
	require.NoError(t, err)
	assert.False(t, running)
	require.NoError(t, second.Release())
}

func TestHolderUnknownWithoutMarker(t *testing.T) {
	dir := t.TempDir()
	first := New("cimianboot-test-nomarker", "Acme Suite", dir)
	_, _, err := first.Acquire()
	require.NoError(t, err)
	defer first.Release()

	require.NoError(t, os.Remove(first.MarkerPath()))

	running, holder, err := New("cimianboot-test-nomarker", "Other", dir).Acquire()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Empty(t, holder)
}

func TestReleaseIdempotent(t *testing.T) {
	g := New("cimianboot-test-release", "Acme Suite", t.TempDir())
	require.NoError(t, g.Release())

	_, _, err := g.Acquire()
	require.NoError(t, err)
	running, _, err := g.Acquire()
	require.NoError(t, err)
	assert.False(t, running, "reacquiring a held guard is a no-op")

	require.NoError(t, g.Release())
	require.NoError(t, g.Release())
}

func TestConflictError(t *testing.T) {
	assert.EqualError(t, ConflictError("Acme Suite"),
		"Concurrent installations are not allowed. Please complete the installation for 'Acme Suite' and then try again.")
	assert.EqualError(t, ConflictError(""),
		"Concurrent installations are not allowed. Please complete the other installation and then try again.")
}

package hosts

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_NotifiesOnCommit(t *testing.T) {
	path := writeHosts(t, "127.0.0.1 localhost\n")

	var changes atomic.Int32
	w, err := Watch(path, func() { changes.Add(1) })
	require.NoError(t, err)
	defer w.Stop()

	r := NewReconciler(path, nil)
	require.NoError(t, r.Commit([]string{"a"}, "10.0.0.1"))

	assert.Eventually(t, func() bool {
		return changes.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatch_IgnoresSiblings(t *testing.T) {
	path := writeHosts(t, "127.0.0.1 localhost\n")

	var changes atomic.Int32
	w, err := Watch(path, func() { changes.Add(1) })
	require.NoError(t, err)
	defer w.Stop()

	sibling := filepath.Join(filepath.Dir(path), "other")
	require.NoError(t, os.WriteFile(sibling, []byte("x"), 0644))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), changes.Load())
}

func TestWatch_MissingDir(t *testing.T) {
	_, err := Watch(filepath.Join(t.TempDir(), "nope", "hosts"), func() {})
	assert.Error(t, err)
}

func TestWatcher_StopTwice(t *testing.T) {
	path := writeHosts(t, "127.0.0.1 localhost\n")
	w, err := Watch(path, func() {})
	require.NoError(t, err)

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

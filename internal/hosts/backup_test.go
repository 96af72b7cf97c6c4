package hosts

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, max int) (*BackupStore, string) {
	t.Helper()
	dir := t.TempDir()
	store := NewBackupStore(filepath.Join(dir, "backups"), max)

	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	path := filepath.Join(dir, "hosts")
	require.NoError(t, os.WriteFile(path, []byte("127.0.0.1 localhost\n"), 0644))
	return store, path
}

func TestBackupStore_Save(t *testing.T) {
	store, path := newTestStore(t, 3)

	name, err := store.Save(path)
	require.NoError(t, err)
	assert.Equal(t, "hosts.20240101-120001.000000.bak", name)

	content, err := os.ReadFile(filepath.Join(store.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1 localhost\n", string(content))
}

func TestBackupStore_Rotation(t *testing.T) {
	store, path := newTestStore(t, 3)

	for i := 0; i < 5; i++ {
		_, err := store.Save(path)
		require.NoError(t, err)
	}

	backups, err := store.List()
	require.NoError(t, err)
	require.Len(t, backups, 3)

	// Newest first; the two oldest were pruned.
	assert.Equal(t, "hosts.20240101-120005.000000.bak", backups[0].Name)
	assert.Equal(t, "hosts.20240101-120003.000000.bak", backups[2].Name)
}

func TestBackupStore_List_MissingDir(t *testing.T) {
	store := NewBackupStore(filepath.Join(t.TempDir(), "nope"), 3)
	backups, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestBackupStore_List_IgnoresForeignFiles(t *testing.T) {
	store, path := newTestStore(t, 3)
	_, err := store.Save(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("x"), 0644))

	backups, err := store.List()
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestBackupStore_Read_RejectsInvalidNames(t *testing.T) {
	store, _ := newTestStore(t, 3)

	tests := []string{
		"../hosts",
		"../../etc/passwd",
		"hosts.x.bak/../../secret",
		"random.txt",
		"",
	}

	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := store.Read(name)
			assert.Error(t, err)
		})
	}
}

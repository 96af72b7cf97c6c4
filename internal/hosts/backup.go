package hosts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	backupPrefix = "hosts."
	backupSuffix = ".bak"
	// backupLayout sorts lexically in time order.
	backupLayout = "20060102-150405.000000"
)

// BackupInfo holds information about a backup file.
type BackupInfo struct {
	Name      string
	Timestamp int64
	Size      int64
}

// BackupStore keeps timestamped copies of the hosts file.
type BackupStore struct {
	dir string
	max int
	now func() time.Time
}

// NewBackupStore creates a backup store in dir keeping at most max backups.
func NewBackupStore(dir string, max int) *BackupStore {
	return &BackupStore{
		dir: dir,
		max: max,
		now: time.Now,
	}
}

// Dir returns the backup directory.
func (b *BackupStore) Dir() string {
	return b.dir
}

// Save copies the file at hostsPath into the store and returns the backup name.
func (b *BackupStore) Save(hostsPath string) (string, error) {
	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	content, err := os.ReadFile(hostsPath)
	if err != nil {
		return "", fmt.Errorf("failed to read hosts file: %w", err)
	}

	name := backupPrefix + b.now().Format(backupLayout) + backupSuffix
	if err := os.WriteFile(filepath.Join(b.dir, name), content, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	// Pruning is best-effort; a stale extra backup is harmless.
	_ = b.cleanup()

	return name, nil
}

func (b *BackupStore) cleanup() error {
	names, err := b.names()
	if err != nil {
		return err
	}

	if len(names) <= b.max {
		return nil
	}

	// Newest first
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	for _, name := range names[b.max:] {
		if err := os.Remove(filepath.Join(b.dir, name)); err != nil {
			return err
		}
	}

	return nil
}

func (b *BackupStore) names() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && isBackupName(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// List returns the available backups, newest first.
func (b *BackupStore) List() ([]BackupInfo, error) {
	names, err := b.names()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	backups := make([]BackupInfo, 0, len(names))
	for _, name := range names {
		info, err := os.Stat(filepath.Join(b.dir, name))
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Name:      name,
			Timestamp: info.ModTime().Unix(),
			Size:      info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Name > backups[j].Name
	})

	return backups, nil
}

// Read returns the content of the named backup.
func (b *BackupStore) Read(name string) ([]byte, error) {
	// Reject anything that could escape the backup directory.
	if filepath.Base(name) != name || !isBackupName(name) {
		return nil, fmt.Errorf("invalid backup name: %q", name)
	}

	content, err := os.ReadFile(filepath.Join(b.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	return content, nil
}

func isBackupName(name string) bool {
	return strings.HasPrefix(name, backupPrefix) && strings.HasSuffix(name, backupSuffix)
}

// Package hosts reconciles managed alias lines into a hosts file.
package hosts

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Sentinel marks every line written by this tool. Any line containing it is
// regenerated on each write; every other line is left alone.
const Sentinel = "# added by wsl2-ip-host"

// maxLineSize bounds a single hosts file line.
const maxLineSize = 1024 * 1024

// PlatformNewline returns the line terminator the platform resolver expects.
func PlatformNewline() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// ManagedLine formats the hosts line mapping alias to address.
func ManagedLine(address, alias string) string {
	return fmt.Sprintf("%s %s %s", address, alias, Sentinel)
}

// IsManaged reports whether line was written by this tool.
func IsManaged(line string) bool {
	return strings.Contains(line, Sentinel)
}

// Reconcile drops every managed line from lines and appends one managed
// line per alias, in alias order. Foreign lines keep their relative order.
func Reconcile(lines, aliases []string, address string) []string {
	result := make([]string, 0, len(lines)+len(aliases))
	for _, line := range lines {
		if !IsManaged(line) {
			result = append(result, line)
		}
	}
	for _, alias := range aliases {
		result = append(result, ManagedLine(address, alias))
	}
	return result
}

// Reconciler reads and rewrites a single hosts file.
type Reconciler struct {
	path    string
	newline string
	backups *BackupStore
}

// NewReconciler creates a reconciler for path. backups may be nil.
func NewReconciler(path string, backups *BackupStore) *Reconciler {
	return &Reconciler{
		path:    path,
		newline: PlatformNewline(),
		backups: backups,
	}
}

// WithNewline overrides the line terminator used when writing.
func (r *Reconciler) WithNewline(newline string) *Reconciler {
	r.newline = newline
	return r
}

// Path returns the target file path.
func (r *Reconciler) Path() string {
	return r.path
}

// ReadLines returns the current lines of the file without terminators.
func (r *Reconciler) ReadLines() ([]string, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, &ReadError{Path: r.path, Err: err}
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, &ReadError{Path: r.path, Err: err}
	}

	return lines, nil
}

// Preview returns the file content that Commit would write, without writing.
func (r *Reconciler) Preview(aliases []string, address string) ([]string, error) {
	lines, err := r.ReadLines()
	if err != nil {
		return nil, err
	}
	return Reconcile(lines, aliases, address), nil
}

// Commit rewrites the file with fresh managed lines for aliases and address.
// It fails before touching the file when the file cannot be read or written,
// reporting a read failure ahead of a permission failure.
func (r *Reconciler) Commit(aliases []string, address string) error {
	lines, err := r.Preview(aliases, address)
	if err != nil {
		return err
	}

	if access := Probe(r.path); !access.Writable {
		return &WriteError{Path: r.path, Err: ErrNotWritable}
	}

	if r.backups != nil {
		if _, err := r.backups.Save(r.path); err != nil {
			return &WriteError{Path: r.path, Err: fmt.Errorf("failed to create backup: %w", err)}
		}
	}

	return r.write(r.render(lines))
}

// Restore replaces the file with the named backup.
func (r *Reconciler) Restore(name string) error {
	if r.backups == nil {
		return fmt.Errorf("backups are disabled")
	}

	content, err := r.backups.Read(name)
	if err != nil {
		return err
	}

	if access := Probe(r.path); !access.Writable {
		return &WriteError{Path: r.path, Err: ErrNotWritable}
	}

	// Keep the state being replaced so the restore itself can be undone.
	if _, err := r.backups.Save(r.path); err != nil {
		return fmt.Errorf("failed to create backup before restore: %w", err)
	}

	return r.write(content)
}

func (r *Reconciler) render(lines []string) []byte {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString(r.newline)
	}
	return []byte(sb.String())
}

// write replaces the file through a temp file and rename. A symlinked path
// is written through to its target. When the rename is refused, it falls
// back to truncating in place.
func (r *Reconciler) write(content []byte) error {
	target := r.path
	if resolved, err := filepath.EvalSymlinks(r.path); err == nil {
		target = resolved
	}

	mode := fs.FileMode(0644)
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
	}

	err := writeAtomic(target, content, mode)
	if err != nil && renameRefused(err) {
		err = writeInPlace(target, content)
	}
	if err != nil {
		return &WriteError{Path: r.path, Err: err}
	}
	return nil
}

func writeAtomic(path string, content []byte, mode fs.FileMode) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return nil
}

func writeInPlace(path string, content []byte) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := file.Write(content); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

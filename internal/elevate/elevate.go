// Package elevate hands a hosts file write to the privileged writer helper.
package elevate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// WriterName is the writer helper's executable name without extension.
const WriterName = "wsl2-ip-host-writer"

// ErrNoAliases is returned when there is nothing for the writer to write.
var ErrNoAliases = errors.New("no aliases to write")

// ErrUsage is returned when the writer is not given exactly three arguments.
var ErrUsage = errors.New("insufficient arguments provided")

// Launcher starts the writer helper. Success only means the helper started;
// its outcome is not observed.
type Launcher interface {
	Launch(address string, aliases []string, path string) error
}

// LaunchError reports that the writer helper could not be started.
type LaunchError struct {
	Writer string
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("unable to run %s: %v", filepath.Base(e.Writer), e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// WriterLauncher starts the writer binary with the three positional arguments
// it expects: address, comma-joined aliases and target path.
type WriterLauncher struct {
	writer string
	prefix []string
	start  func(name string, args []string) error
}

// NewWriterLauncher creates a launcher for writer. An empty writer resolves
// to DefaultWriterPath. prefix is prepended to the command outside Windows,
// for example ["sudo", "-n"].
func NewWriterLauncher(writer string, prefix []string) *WriterLauncher {
	if writer == "" {
		writer = DefaultWriterPath()
	}
	l := &WriterLauncher{
		writer: writer,
		prefix: prefix,
	}
	l.start = l.startElevated
	return l
}

// Writer returns the writer binary path.
func (l *WriterLauncher) Writer() string {
	return l.writer
}

// Args returns the writer's argument vector.
func Args(address string, aliases []string, path string) []string {
	return []string{address, strings.Join(aliases, ","), path}
}

// ParseArgs is the inverse of Args. Aliases are split on commas, blanks are
// dropped and only the first occurrence of each name is kept.
func ParseArgs(args []string) (address string, aliases []string, path string, err error) {
	if len(args) != 3 {
		return "", nil, "", ErrUsage
	}

	seen := make(map[string]bool)
	for _, name := range strings.Split(args[1], ",") {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		aliases = append(aliases, name)
	}
	if len(aliases) == 0 {
		return "", nil, "", ErrNoAliases
	}

	return strings.TrimSpace(args[0]), aliases, args[2], nil
}

// Launch starts the writer helper without waiting for it.
func (l *WriterLauncher) Launch(address string, aliases []string, path string) error {
	if len(aliases) == 0 {
		return ErrNoAliases
	}
	if err := l.start(l.writer, Args(address, aliases, path)); err != nil {
		return &LaunchError{Writer: l.writer, Err: err}
	}
	return nil
}

// DefaultWriterPath returns the writer binary next to the running executable,
// falling back to a bare name resolved through PATH.
func DefaultWriterPath() string {
	name := WriterName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	exe, err := os.Executable()
	if err != nil {
		return name
	}
	return filepath.Join(filepath.Dir(exe), name)
}

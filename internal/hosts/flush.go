package hosts

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/lukaszraczylo/wsl2-ip-host/internal/sysproc"
)

// flushCommand is one way of flushing a resolver cache.
type flushCommand struct {
	name string
	args []string
}

// flushCommands lists, per OS, the cache flush commands tried in order.
var flushCommands = map[string][]flushCommand{
	"windows": {
		{"ipconfig", []string{"/flushdns"}},
	},
	"darwin": {
		{"dscacheutil", []string{"-flushcache"}},
		{"killall", []string{"-HUP", "mDNSResponder"}},
	},
	"linux": {
		{"resolvectl", []string{"flush-caches"}},
		{"systemd-resolve", []string{"--flush-caches"}},
		{"nscd", []string{"-i", "hosts"}},
	},
}

// Flusher flushes the OS DNS cache so new hosts entries take effect.
type Flusher struct {
	goos string
	run  func(name string, args ...string) error
}

// NewFlusher creates a flusher for the running OS.
func NewFlusher() *Flusher {
	return &Flusher{
		goos: runtime.GOOS,
		run:  runCommand,
	}
}

// Flush runs the flush commands for the OS until one succeeds.
func (f *Flusher) Flush() error {
	commands, ok := flushCommands[f.goos]
	if !ok {
		return fmt.Errorf("unsupported operating system: %s", f.goos)
	}

	var lastErr error
	for _, c := range commands {
		if err := f.run(c.name, c.args...); err != nil {
			lastErr = fmt.Errorf("%s failed: %w", c.name, err)
			continue
		}
		return nil
	}

	// Many Linux systems read the hosts file directly and have no cache.
	if f.goos == "linux" {
		return nil
	}
	return lastErr
}

func runCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...) // #nosec G204 - Commands are hardcoded DNS flush utilities, not user input
	sysproc.HideWindow(cmd)
	return cmd.Run()
}

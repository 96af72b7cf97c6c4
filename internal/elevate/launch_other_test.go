//go:build !windows

package elevate

import (
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestStartDetached_ReapsChild(t *testing.T) {
	bin, err := exec.LookPath("true")
	if err != nil {
		t.Skip("true is not available")
	}

	cmd, err := startDetached([]string{bin})
	require.NoError(t, err)
	pid := cmd.Process.Pid

	// A zombie still accepts signal 0; a reaped pid reports ESRCH.
	assert.Eventually(t, func() bool {
		return errors.Is(unix.Kill(pid, 0), unix.ESRCH)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestStartDetached_PrefixedLaunch(t *testing.T) {
	bin, err := exec.LookPath("true")
	if err != nil {
		t.Skip("true is not available")
	}

	l := NewWriterLauncher("/opt/wsl2-ip-host-writer", []string{bin})
	assert.NoError(t, l.Launch("10.0.0.1", []string{"a"}, "/etc/hosts"))
}

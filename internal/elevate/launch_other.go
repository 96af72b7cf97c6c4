//go:build !windows

package elevate

import (
	"os/exec"
)

// startElevated starts the writer, behind the configured prefix if any,
// without waiting for it.
func (l *WriterLauncher) startElevated(name string, args []string) error {
	argv := append(append(append([]string{}, l.prefix...), name), args...)
	_, err := startDetached(argv)
	return err
}

// startDetached starts argv and reaps it in the background once it exits.
func startDetached(argv []string) (*exec.Cmd, error) {
	cmd := exec.Command(argv[0], argv[1:]...) // #nosec G204 - Writer path comes from settings, args are an argument vector
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return cmd, nil
}

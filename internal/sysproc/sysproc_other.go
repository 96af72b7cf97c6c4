//go:build !windows

// Package sysproc sets platform process attributes for helper subprocesses.
package sysproc

import "os/exec"

// HideWindow is a no-op outside Windows.
func HideWindow(cmd *exec.Cmd) {}

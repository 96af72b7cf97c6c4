//go:build windows

package elevate

import (
	"strings"

	"golang.org/x/sys/windows"
)

// startElevated asks the shell to run the writer with the runas verb, which
// shows the UAC consent prompt.
func (l *WriterLauncher) startElevated(name string, args []string) error {
	escaped := make([]string, len(args))
	for i, arg := range args {
		escaped[i] = windows.EscapeArg(arg)
	}

	verb, err := windows.UTF16PtrFromString("runas")
	if err != nil {
		return err
	}
	file, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return err
	}
	params, err := windows.UTF16PtrFromString(strings.Join(escaped, " "))
	if err != nil {
		return err
	}

	return windows.ShellExecute(0, verb, file, params, nil, windows.SW_HIDE)
}

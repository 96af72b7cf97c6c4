//go:build windows

package hosts

import (
	"errors"
	"io/fs"

	"golang.org/x/sys/windows"
)

// renameRefused reports whether a failed temp-file-and-rename write should be
// retried by truncating the file in place. A hosts file held open by the DNS
// client or a scanner cannot be renamed over but can still be rewritten.
func renameRefused(err error) bool {
	return errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, windows.ERROR_SHARING_VIOLATION) ||
		errors.Is(err, windows.ERROR_LOCK_VIOLATION)
}

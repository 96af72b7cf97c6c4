//go:build !windows

package hosts

import (
	"errors"
	"io/fs"
)

// renameRefused reports whether a failed temp-file-and-rename write should be
// retried by truncating the file in place.
func renameRefused(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}
